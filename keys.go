package datafmt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keymap renames record keys on import. Keys without an entry keep their name.
type Keymap map[string]string

// Normalize returns a copy of r with every key renamed through keymap and,
// when forceSnakeCase is set, converted with [ToSnakeCase]. Values are not
// touched. When two keys end up with the same name the later value wins.
func Normalize(r *Record, keymap Keymap, forceSnakeCase bool) *Record {
	out := NewRecord()
	for k, v := range r.All() {
		if mapped, ok := keymap[k]; ok {
			k = mapped
		}
		if forceSnakeCase {
			k = ToSnakeCase(k)
		}
		out.Set(k, v)
	}
	return out
}

// NormalizeValue applies [Normalize] to a mapping, or to each mapping in a
// sequence. Nested values and other kinds are returned unchanged.
func NormalizeValue(v Value, keymap Keymap, forceSnakeCase bool) Value {
	switch v.Kind() {
	case MappingKind:
		return Mapping(Normalize(v.rec, keymap, forceSnakeCase))
	case SequenceKind:
		items := make([]Value, len(v.seq))
		for i, item := range v.seq {
			if rec, ok := item.Record(); ok {
				item = Mapping(Normalize(rec, keymap, forceSnakeCase))
			}
			items[i] = item
		}
		return Sequence(items...)
	default:
		return v
	}
}

// NormalizeDataset applies [Normalize] to every record.
func NormalizeDataset(ds Dataset, keymap Keymap, forceSnakeCase bool) Dataset {
	out := make(Dataset, len(ds))
	for i, rec := range ds {
		out[i] = Normalize(rec, keymap, forceSnakeCase)
	}
	return out
}

// ToSnakeCase converts a key such as "<FooBar-id>" to "foo_bar_id".
//
// Angle brackets and hyphens are trimmed from both ends, an underscore is
// inserted before every ASCII capital except the first character, the result
// is lowercased, and remaining hyphens become underscores.
func ToSnakeCase(s string) string {
	s = strings.Trim(s, "<>-")
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && 'A' <= r && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	lower := cases.Lower(language.Und).String(sb.String())
	return strings.ReplaceAll(lower, "-", "_")
}
