// Package sheetjson holds JSON scalar types for payloads that come out of a
// spreadsheet. Cells that look numeric are often emitted as numbers, empty
// cells as "" and checkboxes as "TRUE"/"FALSE", so the usual Go types are too
// strict to decode them.
package sheetjson

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var null = []byte("null")

// String decodes a JSON string, number or boolean into its textual form.
type String string

func (s *String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = String(v)
		return nil
	}
	*s = String(data)
	return nil
}

func (s String) String() string {
	return string(s)
}

// Float decodes a JSON number or a numeric string. Empty strings, null and
// text that does not parse as a number decode to an unset value.
type Float struct {
	Value float64
	Valid bool
}

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*f = Float{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = Float{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("sheetjson: ignoring non-numeric cell", "value", raw)
		*f = Float{}
		return nil
	}
	*f = Float{Value: v, Valid: true}
	return nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return null, nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil for an unset value.
func (f Float) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// ParseBool reads a checkbox-style cell. ok is false when the text is neither
// a recognised true word nor a recognised false word.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, true
	case "false", "no", "n", "0":
		return false, true
	}
	return false, false
}
