package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Reserved field names managed by record stores.
const (
	// FieldID holds the store-generated identifier.
	FieldID = "id"

	// FieldCreatedAt holds the creation timestamp.
	FieldCreatedAt = "created_at"
)

// Record is one persisted entity instance: an ordered mapping of field
// names to scalar values. Keys keep their first insertion order.
//
// The zero Record is empty and ready to use. Records share storage when
// copied by assignment; use Clone before handing one to another owner.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record with room for n fields.
func NewRecord(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Set stores v under key. A new key is appended after the existing ones;
// replacing a key keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Delete removes key if present.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Range calls fn for each field in order until fn returns false.
func (r Record) Range(fn func(key string, v Value) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := NewRecord(len(r.keys))
	for _, k := range r.keys {
		out.Set(k, r.values[k])
	}
	return out
}

// ID returns the record identifier, or "" if the record has none.
func (r Record) ID() string {
	v, ok := r.values[FieldID]
	if !ok {
		return ""
	}
	return v.Text()
}

// CreatedAt returns the creation timestamp and whether it is set.
func (r Record) CreatedAt() (time.Time, bool) {
	v, ok := r.values[FieldCreatedAt]
	if !ok || v.Kind() != KindTime {
		return time.Time{}, false
	}
	return v.Time(), true
}

// Merge overwrites r's fields with the fields of partial, appending new
// ones. The reserved id and created_at fields of r are never changed.
func (r *Record) Merge(partial Record) {
	partial.Range(func(k string, v Value) bool {
		if k == FieldID || k == FieldCreatedAt {
			return true
		}
		r.Set(k, v)
		return true
	})
}

// Equal reports whether both records hold the same fields in the same order.
func (r Record) Equal(other Record) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k || !r.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// Validate reports whether the record can be stored. Every field needs a
// non-empty name.
func (r Record) Validate() error {
	if r.Has("") {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyFieldName)
	}
	return nil
}

// Stamp returns a copy of fields carrying the given identifier and
// creation time. The id comes first and created_at last; any id or
// created_at already present in fields is discarded.
func Stamp(fields Record, id string, createdAt time.Time) Record {
	out := NewRecord(fields.Len() + 2)
	out.Set(FieldID, StringValue(id))
	fields.Range(func(k string, v Value) bool {
		if k != FieldID && k != FieldCreatedAt {
			out.Set(k, v)
		}
		return true
	})
	out.Set(FieldCreatedAt, TimeValue(createdAt))
	return out
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of values in the form written by
// Value.MarshalJSON, keeping the key order of the input. Other nested
// objects, arrays, booleans and nulls are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: record must be a JSON object", ErrInvalidFormat)
	}

	out := NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key", ErrInvalidFormat)
		}
		if key == "" {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrEmptyFieldName)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
