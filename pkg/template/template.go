package template

import (
	"fmt"
	"sort"
	"strings"
)

// ApplyTemplate replaces every occurrence of `{{key}}` in query with the value
// stored under key. Values are inserted literally and tokens without a matching
// key are left untouched.
func ApplyTemplate(query string, vars map[string]string) string {
	if len(vars) == 0 {
		return query
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	templated := query
	for _, key := range keys {
		templated = strings.ReplaceAll(templated, "{{"+key+"}}", vars[key])
	}

	return templated
}

// Stringify converts adapter variables into template substitutions.
func Stringify(vars map[string]interface{}) map[string]string {
	result := make(map[string]string, len(vars))
	for key, val := range vars {
		switch v := val.(type) {
		case string:
			result[key] = v
		case nil:
			result[key] = ""
		default:
			result[key] = fmt.Sprint(v)
		}
	}
	return result
}
