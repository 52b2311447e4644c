package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ReadingKind tells how a sensor value was encoded at the source
type ReadingKind int

const (
	ReadingInt ReadingKind = iota + 1
	ReadingFloat
	ReadingText
)

// Reading is a single consumed sensor value. A nil *Reading means the value is absent.
type Reading struct {
	Kind  ReadingKind
	Int   int64
	Float float64
	Text  string
}

// IntReading creates an integral reading
func IntReading(v int64) *Reading {
	return &Reading{Kind: ReadingInt, Int: v}
}

// FloatReading creates a floating point reading
func FloatReading(v float64) *Reading {
	return &Reading{Kind: ReadingFloat, Float: v}
}

// TextReading creates a textual reading
func TextReading(v string) *Reading {
	return &Reading{Kind: ReadingText, Text: v}
}

// ReadingFrom converts a raw document value into a Reading. It returns nil for nil or
// unsupported values so that the caller treats them as absent.
func ReadingFrom(v any) *Reading {
	switch t := v.(type) {
	case int64:
		return IntReading(t)
	case int:
		return IntReading(int64(t))
	case int32:
		return IntReading(int64(t))
	case float64:
		return FloatReading(t)
	case float32:
		return FloatReading(float64(t))
	case string:
		return TextReading(t)
	case bool:
		return TextReading(strconv.FormatBool(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntReading(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatReading(f)
		}
		return nil
	default:
		return nil
	}
}

// Format renders the value for humans. Floating point values always carry two decimals.
func (r *Reading) Format() string {
	if r == nil {
		return ""
	}
	switch r.Kind {
	case ReadingInt:
		return strconv.FormatInt(r.Int, 10)
	case ReadingFloat:
		return fmt.Sprintf("%.2f", r.Float)
	default:
		return r.Text
	}
}

// Value returns the raw value used for persistence. nil receiver yields nil.
func (r *Reading) Value() any {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case ReadingInt:
		return r.Int
	case ReadingFloat:
		return r.Float
	default:
		return r.Text
	}
}

func (r *Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed := ReadingFrom(raw)
	if parsed == nil {
		*r = Reading{}
		return nil
	}
	*r = *parsed
	return nil
}
