package jwkset

import "mime"

func parseMediaType(v string) (string, map[string]string, error) {
	return mime.ParseMediaType(v)
}

func isJSONMediaType(mt string) bool {
	switch mt {
	case "application/jwk-set+json", "application/json", "text/json":
		return true
	default:
		return false
	}
}
