package server

import "fmt"

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return b == "true" || b == "1" || b == "yes"
		}
	}
	return defaultVal
}
