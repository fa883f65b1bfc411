package datafmt

import (
	"fmt"
	"iter"
	"slices"
)

// Entry is one key-value pair of a [Record].
type Entry struct {
	Key   string
	Value Value
}

// Record is a mapping of string keys to values that remembers insertion
// order. Keys are unique: setting an existing key replaces its value in place.
type Record struct {
	entries []Entry
	index   map[string]int
}

// NewRecord returns a record holding the given entries in order.
func NewRecord(entries ...Entry) *Record {
	r := &Record{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		r.Set(e.Key, e.Value)
	}
	return r
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	i, ok := r.index[key]
	if !ok {
		return Value{}, false
	}
	return r.entries[i].Value, true
}

// Set stores v under key.
func (r *Record) Set(key string, v Value) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.entries[i].Value = v
		return
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Key: key, Value: v})
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	if r == nil {
		return false
	}
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	delete(r.index, key)
	for j := i; j < len(r.entries); j++ {
		r.index[r.entries[j].Key] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// SortedKeys returns the keys in lexicographic byte order.
func (r *Record) SortedKeys() []string {
	keys := r.Keys()
	slices.Sort(keys)
	return keys
}

// All iterates over the entries in insertion order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for _, e := range r.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return NewRecord()
	}
	return NewRecord(r.entries...)
}

// Project returns a record holding only fields, in that order. Fields absent
// from r are absent from the result.
func (r *Record) Project(fields []string) *Record {
	out := NewRecord()
	for _, f := range fields {
		if v, ok := r.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out
}

// Equal reports whether both records hold the same keys and equal values,
// ignoring order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for k, v := range r.All() {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Map converts r to a plain map using [Value.Interface] for every value.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, r.Len())
	for k, v := range r.All() {
		m[k] = v.Interface()
	}
	return m
}

// Dataset is an ordered sequence of records.
type Dataset []*Record

// DatasetOf interprets v as a dataset. A sequence must contain only mappings;
// a single mapping becomes a one-record dataset; null is an empty dataset.
func DatasetOf(v Value) (Dataset, error) {
	switch v.Kind() {
	case NullKind:
		return Dataset{}, nil
	case MappingKind:
		return Dataset{v.rec}, nil
	case SequenceKind:
		ds := make(Dataset, len(v.seq))
		for i, item := range v.seq {
			rec, ok := item.Record()
			if !ok {
				return nil, fmt.Errorf("%w: item %d is a %s, not a mapping", ErrShape, i, item.Kind())
			}
			ds[i] = rec
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a dataset", ErrShape, v.Kind())
	}
}

// Value wraps the dataset as a sequence of mappings.
func (d Dataset) Value() Value {
	items := make([]Value, len(d))
	for i, rec := range d {
		items[i] = Mapping(rec)
	}
	return Sequence(items...)
}

// Project applies [Record.Project] to every record.
func (d Dataset) Project(fields []string) Dataset {
	out := make(Dataset, len(d))
	for i, rec := range d {
		out[i] = rec.Project(fields)
	}
	return out
}

// Fieldnames returns every key used by the dataset, in the order each key is
// first seen.
func (d Dataset) Fieldnames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range d {
		for k := range rec.All() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}
