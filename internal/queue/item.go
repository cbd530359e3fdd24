package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// Item is a loosely structured work record supplied by the caller.
// A nil Item stands in for a record with no fields at all.
type Item map[string]Value

// Well-known identifier fields used for labelling.
const (
	FieldPrimaryID = "_id"
	FieldID        = "id"
)

// Field returns the named field, or Absent when the item lacks it.
func (i Item) Field(name string) Value {
	if i == nil {
		return Absent()
	}
	return i[name]
}

// Label returns the item's identifier, preferring _id over id.
// The second result is false when neither is truthy.
func (i Item) Label() (string, bool) {
	if v := i.Field(FieldPrimaryID); v.Truthy() {
		return v.String(), true
	}
	if v := i.Field(FieldID); v.Truthy() {
		return v.String(), true
	}
	return "", false
}

// LogValue logs the item as a group of its fields in key order.
func (i Item) LogValue() slog.Value {
	keys := make([]string, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, i[k]))
	}
	return slog.GroupValue(attrs...)
}

// FromAny converts a generic decoded record into an Item.
func FromAny(fields map[string]any) (Item, error) {
	if fields == nil {
		return nil, nil
	}
	item := make(Item, len(fields))
	for key, raw := range fields {
		value, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		item[key] = value
	}
	return item, nil
}

// ToAny converts the item back into a generic record. Absent fields are dropped.
func (i Item) ToAny() map[string]any {
	if i == nil {
		return nil
	}
	out := make(map[string]any, len(i))
	for key, value := range i {
		if value.IsAbsent() {
			continue
		}
		out[key] = value.Any()
	}
	return out
}

// DecodeItems parses a JSON array of flat objects. A JSON null element
// decodes to a nil Item.
func DecodeItems(data []byte) ([]Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// EncodeItems renders items as an indented JSON array.
func EncodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return data, nil
}
