package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the textual form of timestamp values, e.g.
// "2025-04-01 12:00:00.000000".
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Kind identifies the scalar type held by a Value.
type Kind int

// Supported value kinds
const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "time":
		return KindTime, nil
	default:
		return KindString, fmt.Errorf("%w: unknown value kind %q", ErrInvalidFormat, s)
	}
}

// Value is a scalar field value: a string, a number or a timestamp.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// TimeValue returns a timestamp Value. Timestamps are normalized to UTC with
// microsecond precision, which is what the textual form can represent.
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, tm: normalizeTime(t)}
}

func normalizeTime(t time.Time) time.Time {
	return t.Round(0).UTC().Truncate(time.Microsecond)
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload; empty for non-string values.
func (v Value) Str() string { return v.str }

// Number returns the numeric payload; zero for non-numeric values.
func (v Value) Number() float64 { return v.num }

// Time returns the timestamp payload; the zero time for non-time values.
func (v Value) Time() time.Time { return v.tm }

// Text returns the textual form of the value. Searches compare against it.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.tm.Format(TimestampLayout)
	default:
		return v.str
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindTime:
		return v.tm.Equal(other.tm)
	default:
		return v.str == other.str
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.Text()
}

// ParseValue decodes the textual form of a value of the given kind.
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, text)
		}
		return NumberValue(n), nil
	case KindTime:
		t, err := time.Parse(TimestampLayout, text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a timestamp", ErrInvalidFormat, text)
		}
		return TimeValue(t), nil
	default:
		return StringValue(text), nil
	}
}

// jsonTimeKey tags timestamps in JSON: {"time":"2025-04-01 12:00:00.000000"}.
// Plain JSON strings always decode as strings.
const jsonTimeKey = "time"

// MarshalJSON encodes strings as JSON strings, numbers as JSON numbers and
// timestamps as a {"time": ...} object, so every kind survives a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindTime:
		return json.Marshal(map[string]string{jsonTimeKey: v.Text()})
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON accepts the forms written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if obj, ok := raw.(map[string]any); ok {
		text, ok := obj[jsonTimeKey].(string)
		if !ok || len(obj) != 1 {
			return fmt.Errorf("%w: object value must be {%q: timestamp}", ErrInvalidFormat, jsonTimeKey)
		}
		decoded, err := ParseValue(KindTime, text)
		if err != nil {
			return err
		}
		*v = decoded
		return nil
	}
	decoded, err := valueFromJSON(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func valueFromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case string:
		return StringValue(x), nil
	case float64:
		return NumberValue(x), nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return NumberValue(n), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported JSON value %T", ErrInvalidFormat, raw)
	}
}
