package testenv

import (
	"bytes"
	"encoding/json"
)

// FromJSON unmarshals from JSON string.
// Error causes panic.
func FromJSON(j string, ptr any) {
	if e := json.Unmarshal([]byte(j), ptr); e != nil {
		panic(e)
	}
}

// ToJSON marshals a value as JSON string.
func ToJSON(v any) string {
	j, e := json.Marshal(v)
	if e != nil {
		return "ERROR: " + e.Error()
	}
	return string(j)
}

// CompactJSON removes insignificant whitespace from a JSON document.
// Error causes panic.
func CompactJSON(j string) string {
	var b bytes.Buffer
	if e := json.Compact(&b, []byte(j)); e != nil {
		panic(e)
	}
	return b.String()
}
