package grid

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ValueKind tags which variant a filter Value holds.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindTime
	KindList
	KindRange
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	default:
		return "none"
	}
}

// Value is a filter operand: text, number, bool, time, a list of scalars,
// or a two-element range. The zero Value is "no value".
type Value struct {
	kind  ValueKind
	text  string
	num   float64
	b     bool
	t     time.Time
	items []Value // List elements, or [lo, hi] for ranges
}

// TextValue returns a text operand.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// NumberValue returns a numeric operand.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// IntValue returns a numeric operand from an int.
func IntValue(i int) Value { return NumberValue(float64(i)) }

// BoolValue returns a boolean operand.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue returns a date/time operand.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// ListValue returns a list operand for the "in" operator.
func ListValue(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value(nil), items...)}
}

// RangeValue returns a [lo, hi] operand for the "between" operator.
func RangeValue(lo, hi Value) Value {
	return Value{kind: KindRange, items: []Value{lo, hi}}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsZero reports whether v holds no value.
func (v Value) IsZero() bool { return v.kind == KindNone }

// Text returns the text payload.
func (v Value) Text() string { return v.text }

// Number returns the numeric payload.
func (v Value) Number() float64 { return v.num }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Time returns the time payload.
func (v Value) Time() time.Time { return v.t }

// List returns a copy of the list elements.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.items...)
}

// Range returns the bounds of a range value.
func (v Value) Range() (lo, hi Value, ok bool) {
	if v.kind != KindRange || len(v.items) != 2 {
		return Value{}, Value{}, false
	}
	return v.items[0], v.items[1], true
}

// asText returns v as a text operand. Times keep the string they were
// decoded from.
func (v Value) asText() Value {
	if v.kind == KindTime && v.text == "" {
		return TextValue(v.t.Format(time.RFC3339))
	}
	return TextValue(v.text)
}

// isScalar reports whether v is text, number, bool or time.
func (v Value) isScalar() bool {
	switch v.kind {
	case KindText, KindNumber, KindBool, KindTime:
		return true
	}
	return false
}

// Any returns the native Go form: string, float64, bool, time.Time,
// []any for lists and [2]any for ranges.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case KindRange:
		return [2]any{v.items[0].Any(), v.items[1].Any()}
	default:
		return nil
	}
}

// String renders v for labels and logs.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindNumber:
		return formatFloat(v.num)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case KindRange:
		return v.items[0].String() + " - " + v.items[1].String()
	default:
		return FormatValue(v.Any())
	}
}

// MarshalJSON encodes v in its native JSON shape. Ranges encode as a
// two-element array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindTime {
		return json.Marshal(v.t.Format(time.RFC3339))
	}
	if v.kind == KindList || v.kind == KindRange {
		return json.Marshal(v.items)
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes strings, numbers, booleans and arrays. Strings in
// RFC 3339 form decode as times, but remain text when the filter operator
// is a text match. Arrays decode as lists; a two-element list
// becomes a range when used with the between operator.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			v := TimeValue(t)
			v.text = x // Kept for text operators
			return v, nil
		}
		return TextValue(x), nil
	case float64:
		return NumberValue(x), nil
	case bool:
		return BoolValue(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, el := range x {
			item, err := valueFromAny(el)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return ListValue(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported filter value type %T", raw)
	}
}
