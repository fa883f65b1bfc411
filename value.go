package datafmt

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	SequenceKind
	MappingKind
)

var kindNames = [...]string{"null", "bool", "number", "string", "sequence", "mapping"}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the interchange representation every loader produces and every
// dumper consumes. The zero Value is null.
//
// Numbers keep the literal they were read from, so "1.0" stays "1.0" through
// a load and dump.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents or number literal
	seq  []Value
	rec  *Record
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Int returns an integer number value.
func Int(n int64) Value { return Value{kind: NumberKind, s: strconv.FormatInt(n, 10)} }

// Float returns a floating point number value. Whole numbers keep a ".0"
// suffix so they remain floats after a round trip.
func Float(f float64) Value {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return Value{kind: NumberKind, s: s}
}

// Number returns a number value holding the literal text as-is. The literal
// is validated when the value is parsed or dumped, not here.
func Number(literal string) Value { return Value{kind: NumberKind, s: literal} }

// String returns a string value.
func String(s string) Value { return Value{kind: StringKind, s: s} }

// Sequence returns an ordered sequence of values.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: SequenceKind, seq: items}
}

// Mapping wraps a record as a value. A nil record is an empty mapping.
func Mapping(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: MappingKind, rec: r}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == BoolKind }

// AsString returns the string held by v. Numbers are not converted.
func (v Value) AsString() (string, bool) { return v.s, v.kind == StringKind }

// AsNumber returns the number literal held by v.
func (v Value) AsNumber() (string, bool) { return v.s, v.kind == NumberKind }

// Float64 parses a number value as float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.s, 64)
	return f, err == nil
}

// Int64 parses a number value as int64. Literals with a fraction or exponent
// are rejected.
func (v Value) Int64() (int64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	n, err := strconv.ParseInt(v.s, 10, 64)
	return n, err == nil
}

// Items returns the elements of a sequence.
func (v Value) Items() ([]Value, bool) { return v.seq, v.kind == SequenceKind }

// Record returns the record behind a mapping.
func (v Value) Record() (*Record, bool) { return v.rec, v.kind == MappingKind }

// String returns the text used for table and CSV cells. Containers render as
// canonical single-line JSON.
func (v Value) String() string {
	switch v.kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(v.b)
	case NumberKind, StringKind:
		return v.s
	default:
		s, err := DumpJSON(v, 0)
		if err != nil {
			return fmt.Sprintf("%%!(%s: %v)", v.kind, err)
		}
		return s
	}
}

// Interface converts v to plain Go data: nil, bool, int64 or float64, string,
// []any, and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case BoolKind:
		return v.b
	case NumberKind:
		if n, ok := v.Int64(); ok {
			return n
		}
		if f, ok := v.Float64(); ok {
			return f
		}
		return v.s
	case StringKind:
		return v.s
	case SequenceKind:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	case MappingKind:
		return v.rec.Map()
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same data. Mapping key order is
// ignored and numbers compare by numeric value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind:
		return v.b == o.b
	case StringKind:
		return v.s == o.s
	case NumberKind:
		if v.s == o.s {
			return true
		}
		a, aok := v.Float64()
		b, bok := o.Float64()
		return aok && bok && a == b
	case SequenceKind:
		return slices.EqualFunc(v.seq, o.seq, Value.Equal)
	default:
		return v.rec.Equal(o.rec)
	}
}

// ValueOf converts plain Go data into a Value. It accepts nil, bool, integer
// and float types, string, Value, *Record, Dataset, slices, and maps keyed by
// string. Map entries are added in sorted key order.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Record:
		return Mapping(t), nil
	case Dataset:
		return t.Value(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = item
		}
		return Sequence(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key type %s is not string", ErrShape, rv.Type().Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		rec := NewRecord()
		for _, k := range keys {
			item, err := ValueOf(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			rec.Set(k, item)
		}
		return Mapping(rec), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot convert %T", ErrShape, x)
	}
}

// MustValueOf is like [ValueOf] but panics on unsupported input.
func MustValueOf(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}
