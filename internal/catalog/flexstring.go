package catalog

import (
	"encoding/json"
	"fmt"
)

// flexString accepts a JSON string, number or null and keeps the textual
// form. Numbers keep their shortest representation ("1" not "1.000000").
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", b)
}
