package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(num.String())
	return nil
}

// FlexFloat accepts a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", str)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("expected number, got %s", data)
	}
	*f = FlexFloat(v)
	return nil
}

// LocationImport is a location as accepted on import. Older files carry only
// a name, which then doubles as the key.
type LocationImport struct {
	Index        int          `json:"-"`
	Type         string       `json:"type"`
	Key          FlexString   `json:"key"`
	Name         FlexString   `json:"name"`
	X            *FlexFloat   `json:"x" validate:"required"`
	Y            *FlexFloat   `json:"y" validate:"required"`
	Shape        string       `json:"shape"`
	Data         any          `json:"data"`
	NeighborKeys []FlexString `json:"neighborKeys"`
}

// EffectiveKey returns the key, falling back to the name.
func (l LocationImport) EffectiveKey() string {
	if l.Key != "" {
		return string(l.Key)
	}
	return string(l.Name)
}

type EdgeImport struct {
	Index  int        `json:"-"`
	Type   string     `json:"type"`
	Start  FlexString `json:"start" validate:"required"`
	End    FlexString `json:"end" validate:"required,nefield=Start"`
	Weight *FlexFloat `json:"weight"`
}

// SkippedRecord describes an import record that was not loaded.
type SkippedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportBatch is the parsed form of an import document. Total counts every
// record seen, including skipped ones.
type ImportBatch struct {
	Locations []LocationImport `json:"locations"`
	Edges     []EdgeImport     `json:"edges"`
	Skipped   []SkippedRecord  `json:"skipped,omitempty"`
	Total     int              `json:"total"`
}
