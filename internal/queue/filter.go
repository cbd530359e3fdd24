package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Operator selects how a clause compares an item field with its operand.
type Operator uint8

const (
	// OpUnknown is decoded from unrecognised operator tags. Its clauses never
	// change an item's mark.
	OpUnknown Operator = iota
	OpEqual
	OpGreaterThan
	OpLessThan
)

// Operator tags accepted in the JSON form of a filter.
const (
	TagGreaterThan = "$gt"
	TagLessThan    = "$lt"
)

// ParseOperator maps an operator tag to its Operator.
func ParseOperator(tag string) Operator {
	switch tag {
	case TagGreaterThan:
		return OpGreaterThan
	case TagLessThan:
		return OpLessThan
	default:
		return OpUnknown
	}
}

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpGreaterThan:
		return TagGreaterThan
	case OpLessThan:
		return TagLessThan
	default:
		return "unknown"
	}
}

// Clause is one field criterion of a Filter.
type Clause struct {
	Field   string
	Op      Operator
	Operand Value
}

// Filter is an ordered set of field clauses, at most one per field.
// Clause order is the order fields were first added and decides the final
// mark when several relational clauses apply to the same item.
type Filter struct {
	clauses []Clause
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds a strict equality clause.
func (f *Filter) Eq(field string, v Value) *Filter {
	return f.Where(field, OpEqual, v)
}

// Gt adds a strictly-greater-than clause.
func (f *Filter) Gt(field string, v Value) *Filter {
	return f.Where(field, OpGreaterThan, v)
}

// Lt adds a strictly-less-than clause.
func (f *Filter) Lt(field string, v Value) *Filter {
	return f.Where(field, OpLessThan, v)
}

// Where sets the clause for field. Setting a field twice replaces the earlier
// clause but keeps its position.
func (f *Filter) Where(field string, op Operator, v Value) *Filter {
	clause := Clause{Field: field, Op: op, Operand: v}
	for i := range f.clauses {
		if f.clauses[i].Field == field {
			f.clauses[i] = clause
			return f
		}
	}
	f.clauses = append(f.clauses, clause)
	return f
}

// Clauses returns a copy of the filter's clauses in evaluation order.
func (f *Filter) Clauses() []Clause {
	if f == nil {
		return nil
	}
	out := make([]Clause, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Len reports the number of clauses.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.clauses)
}

// mark evaluates every clause against item, starting from marked.
// Equality clauses only ever set the mark; relational clauses assign it.
func (f *Filter) mark(item Item, marked bool) bool {
	for _, clause := range f.clauses {
		field := item.Field(clause.Field)
		if !field.Truthy() {
			continue
		}
		switch clause.Op {
		case OpEqual:
			if field.Equal(clause.Operand) {
				marked = true
			}
		case OpGreaterThan:
			marked = field.greater(clause.Operand)
		case OpLessThan:
			marked = field.less(clause.Operand)
		}
	}
	return marked
}

// ParseFilter decodes the JSON form of a filter, for example
// {"title":"done","retry":{"$gt":10}}. Key order is preserved. Input that is
// not a JSON object yields an empty filter.
func ParseFilter(data []byte) (*Filter, error) {
	f := NewFilter()
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if err := skipRest(dec, tok); err != nil {
			return nil, fmt.Errorf("decode filter: %w", err)
		}
		if err := expectEOF(dec); err != nil {
			return nil, err
		}
		return f, nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode filter: %w", err)
		}
		field, _ := keyTok.(string)
		op, operand, err := decodeClauseValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode filter field %q: %w", field, err)
		}
		f.Where(field, op, operand)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return f, nil
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode filter: trailing data after value")
	}
	return nil
}

// MustParseFilter is ParseFilter for filters known at compile time.
func MustParseFilter(spec string) *Filter {
	f, err := ParseFilter([]byte(spec))
	if err != nil {
		panic(err)
	}
	return f
}

func decodeClauseValue(dec *json.Decoder) (Operator, Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return OpUnknown, Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			if err := skipRest(dec, t); err != nil {
				return OpUnknown, Value{}, err
			}
			// Arrays never equal a scalar field.
			return OpUnknown, Value{}, nil
		}
		return decodeOperatorObject(dec)
	default:
		v, err := ValueOf(t)
		if err != nil {
			return OpUnknown, Value{}, err
		}
		return OpEqual, v, nil
	}
}

// decodeOperatorObject reads {"$op": operand, ...} after its opening brace.
// Only the first key counts; an empty object yields OpUnknown. A composite
// operand keeps its operator with an absent operand, so the comparison is
// false and still clears the mark.
func decodeOperatorObject(dec *json.Decoder) (Operator, Value, error) {
	op := OpUnknown
	var operand Value
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return OpUnknown, Value{}, err
		}
		tok, err := dec.Token()
		if err != nil {
			return OpUnknown, Value{}, err
		}
		composite := false
		if delim, ok := tok.(json.Delim); ok {
			if err := skipRest(dec, delim); err != nil {
				return OpUnknown, Value{}, err
			}
			composite = true
		}
		if !first {
			continue
		}
		first = false
		tag, _ := keyTok.(string)
		op = ParseOperator(tag)
		if op == OpUnknown || composite {
			continue
		}
		if operand, err = ValueOf(tok); err != nil {
			return OpUnknown, Value{}, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return OpUnknown, Value{}, err
	}
	return op, operand, nil
}

// skipRest consumes the remainder of a composite value whose opening token
// has already been read. Scalars need no further reads.
func skipRest(dec *json.Decoder, tok json.Token) error {
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if delim != '{' && delim != '[' {
		return nil
	}
	depth := 1
	for depth > 0 {
		next, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := next.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
