package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the payload carried by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is a single item field. The zero Value is Absent.
type Value struct {
	kind Kind
	num  float64
	text string
	flag bool
}

// Absent returns the value reported for fields an item does not carry.
func Absent() Value { return Value{} }

// Number wraps a numeric field value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int wraps an integral field value.
func Int(n int64) Value { return Number(float64(n)) }

// Text wraps a string field value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool wraps a boolean field value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Kind reports which payload v carries.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v carries no payload.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// Str returns the text payload and whether v is text.
func (v Value) Str() (string, bool) { return v.text, v.kind == KindText }

// Boolean returns the boolean payload and whether v is a bool.
func (v Value) Boolean() (bool, bool) { return v.flag, v.kind == KindBool }

// Truthy reports whether v counts as present for matching and labelling.
// Absent, zero, NaN, empty text and false are all falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindText:
		return v.text != ""
	case KindBool:
		return v.flag
	default:
		return false
	}
}

// Equal reports strict equality: same kind and same payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindText:
		return v.text == other.text
	case KindBool:
		return v.flag == other.flag
	default:
		return true
	}
}

// greater and less compare numbers numerically and text lexicographically.
// Any other pairing compares false.
func (v Value) greater(other Value) bool {
	switch {
	case v.kind == KindNumber && other.kind == KindNumber:
		return v.num > other.num
	case v.kind == KindText && other.kind == KindText:
		return v.text > other.text
	default:
		return false
	}
}

func (v Value) less(other Value) bool {
	switch {
	case v.kind == KindNumber && other.kind == KindNumber:
		return v.num < other.num
	case v.kind == KindText && other.kind == KindText:
		return v.text < other.text
	default:
		return false
	}
}

// String renders v the way queue labels show it.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// LogValue keeps the payload typed when a Value is logged.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindNumber:
		return slog.Float64Value(v.num)
	case KindText:
		return slog.StringValue(v.text)
	case KindBool:
		return slog.BoolValue(v.flag)
	default:
		return slog.AnyValue(nil)
	}
}

// FormatNumber renders n with the shortest round-tripping digits. Magnitudes
// of 1e21 and above, or below 1e-6, switch to exponent form such as 1e+21
// and 1e-7.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + exp[:1] + digits
}

// Any returns the payload as a plain Go value (float64, string, bool or nil).
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindBool:
		return v.flag
	default:
		return nil
	}
}

// MarshalJSON encodes v as a JSON scalar; Absent encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return nil, fmt.Errorf("encode value: unsupported number %v", v.num)
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	decoded, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ValueOf converts a decoded scalar into a Value. It accepts the shapes
// produced by encoding/json, go-toml and database/sql drivers.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Absent(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Text(string(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("decode number %q: %w", x.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		return Number(float64(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported field value of type %T", raw)
	}
}
