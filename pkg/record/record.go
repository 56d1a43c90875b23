// Package record provides the columnar record container the codecs read and
// write: an ordered set of named fields with keyed and positional access.
// A nil field value is a null. Records carry no schema of their own; the
// codec that produced or consumes a record owns the layout contract.
package record

import "fmt"

// Record is an ordered collection of named field values.
// The zero value is an empty record ready for use.
type Record struct {
	names  []string
	values []interface{}
	index  map[string]int
}

// New creates a record with capacity for n fields.
func New(n int) *Record {
	return &Record{
		names:  make([]string, 0, n),
		values: make([]interface{}, 0, n),
		index:  make(map[string]int, n),
	}
}

// Append adds a named field. A nil value stores a null. Append returns the
// record to allow chaining while building.
func (r *Record) Append(name string, value interface{}) *Record {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.values = append(r.values, value)
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.names) }

// Name returns the field name at position i.
func (r *Record) Name(i int) string { return r.names[i] }

// At returns the field value at position i. Null fields return nil.
func (r *Record) At(i int) interface{} { return r.values[i] }

// Get returns the value of the named field and whether the field exists.
// Null fields return (nil, true).
func (r *Record) Get(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// IsNull reports whether the named field exists and holds a null.
func (r *Record) IsNull(name string) bool {
	i, ok := r.index[name]
	return ok && r.values[i] == nil
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// String renders the record for diagnostics.
func (r *Record) String() string {
	s := "{"
	for i, name := range r.names {
		if i > 0 {
			s += ", "
		}
		if r.values[i] == nil {
			s += name + ": null"
		} else {
			s += fmt.Sprintf("%s: %v", name, r.values[i])
		}
	}
	return s + "}"
}
