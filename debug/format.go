package debug

import (
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

var errUnknownFormat = errors.New("unsupported format")

// PrettyJSONString returns the given value as a pretty-printed JSON string.
// If the value cannot be marshaled to JSON, an empty string is returned.
func PrettyJSONString(v any) string {
	//nolint:errchkjson
	jsonString, _ := json.MarshalIndent(v, "", "  ")

	return string(jsonString)
}

// PrettyYAMLString is PrettyJSONString for YAML.
func PrettyYAMLString(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}

	return string(out)
}
