package datafmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrInvalidTemplate    = errors.New("invalid template")
	ErrParse              = errors.New("parse error")
	ErrDialect            = errors.New("could not determine dialect")
	ErrIO                 = errors.New("i/o error")
	ErrEncoding           = errors.New("encoding error")
	ErrShape              = errors.New("unexpected data shape")
	ErrUnsupportedDialect = errors.New("unsupported dialect")
)

// Error carries the context of a failed load or save. Both Kind and Err match
// with [errors.Is] and [errors.As].
type Error struct {
	Kind   error  // one of the sentinel errors
	Format Format // format being read or written, if known
	Source string // file path or URL; empty for in-memory data
	Line   int    // 1-based line, when the parser knows it
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Format != "" {
		sb.WriteString(string(e.Format))
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Error())
	if e.Source != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, ": line %d", e.Line)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// withSource fills in the source of err when it is an *Error without one.
func withSource(err error, source string) error {
	var e *Error
	if errors.As(err, &e) && e.Source == "" {
		e.Source = source
	}
	return err
}

// Format names a data format.
type Format string

const (
	JSON  Format = "json"
	JSONL Format = "jsonl"
	YAML  Format = "yaml"
	CSV   Format = "csv"
	TSV   Format = "tsv"
	Table Format = "table"
)

const goTemplatePrefix = "go-template="

var formats = []Format{JSON, JSONL, YAML, CSV, TSV, Table}

var extensions = map[string]Format{
	".json":   JSON,
	".jsonl":  JSONL,
	".ndjson": JSONL,
	".yaml":   YAML,
	".yml":    YAML,
	".csv":    CSV,
	".tsv":    TSV,
	".md":     Table,
	".txt":    Table,
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Loadable reports whether data in format f can be loaded.
func (f Format) Loadable() bool {
	switch f {
	case JSON, JSONL, YAML, CSV, TSV:
		return true
	default:
		return false
	}
}

// Formats returns all static format names.
// GoTemplate is not included because it is parameterized.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// GoTemplate returns a Format that renders each record using a Go
// text/template.
func GoTemplate(tmpl string) Format {
	return Format(goTemplatePrefix + tmpl)
}

// ParseFormat parses a format name. Recognizes all static formats and
// go-template=<tmpl> strings.
func ParseFormat(s string) (Format, error) {
	if strings.HasPrefix(s, goTemplatePrefix) {
		return Format(s), nil
	}
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf picks a format from the extension of path.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: no format for extension %q", ErrUnsupportedFormat, ext)
}

// Options configures the format-independent entry points. Each field only
// affects the formats noted.
type Options struct {
	// Fields selects columns. On CSV load it replaces the header row; on CSV,
	// TSV, and Table output it picks and orders columns. Empty means every
	// key of the dataset in first-seen order.
	Fields []string

	// Header writes a header row for CSV and TSV output.
	Header bool

	// Indent is the JSON indentation width; 0 writes a single line.
	Indent int

	// Dialect overrides the CSV dialect. On load it skips sniffing.
	Dialect *Dialect

	// Sniffer replaces DefaultSniffer for CSV loads.
	Sniffer Sniffer

	// Keymap and SnakeCase are applied to mapping keys after a load.
	Keymap    Keymap
	SnakeCase bool

	// Encoding names the text encoding of files. Empty means UTF-8.
	Encoding string

	// Width measures cells for Table output. Nil means [Width].
	Width WidthFunc
}

func (o Options) normalizes() bool { return len(o.Keymap) > 0 || o.SnakeCase }

// Load parses data in format f.
func Load(f Format, data []byte, opts Options) (Value, error) {
	var (
		v   Value
		err error
	)
	switch f {
	case JSON:
		v, err = LoadJSON(data)
	case JSONL:
		var ds Dataset
		ds, err = LoadJSONL(data)
		v = ds.Value()
	case YAML:
		v, err = LoadYAML(data)
	case CSV, TSV:
		var ds Dataset
		ds, err = LoadCSVReader(bytes.NewReader(data), opts.csvOptions(f))
		v = ds.Value()
	default:
		return Value{}, fmt.Errorf("%w: %q cannot be loaded", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return Value{}, err
	}
	if opts.normalizes() {
		v = NormalizeValue(v, opts.Keymap, opts.SnakeCase)
	}
	return v, nil
}

// LoadFile reads path in the format implied by its extension, decoding it
// with opts.Encoding.
func LoadFile(path string, opts Options) (Value, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Value{}, err
	}
	data, err := readFile(path, opts.Encoding, f)
	if err != nil {
		return Value{}, err
	}
	v, err := Load(f, data, opts)
	return v, withSource(err, path)
}

func (o Options) csvOptions(f Format) CSVOptions {
	co := CSVOptions{Header: o.Fields, Dialect: o.Dialect, Sniffer: o.Sniffer}
	if co.Dialect == nil && f == TSV {
		d := DialectTSV
		co.Dialect = &d
	}
	return co
}

func (o Options) dumpDialect(f Format) Dialect {
	switch {
	case o.Dialect != nil:
		return *o.Dialect
	case f == TSV:
		return DialectTSV
	default:
		return DialectLF
	}
}

// Write serializes v in format f to w.
func Write(w io.Writer, f Format, v Value, opts Options) error {
	switch f {
	case JSON:
		return WriteJSON(w, v, opts.Indent)
	case YAML:
		return WriteYAML(w, v)
	}

	ds, err := DatasetOf(v)
	if err != nil {
		return fmt.Errorf("%s: %w", f, err)
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = ds.Fieldnames()
	}
	switch f {
	case JSONL:
		return WriteJSONL(w, ds)
	case CSV, TSV:
		return WriteCSV(w, ds, fields, CSVDumpOptions{Header: opts.Header, Dialect: opts.dumpDialect(f)})
	case Table:
		return WriteTable(w, ds, fields, TableOptions{Width: opts.Width})
	default:
		if tmpl, ok := strings.CutPrefix(string(f), goTemplatePrefix); ok {
			return RenderTemplate(w, tmpl, ds)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Marshal serializes v in format f and returns the bytes.
func Marshal(f Format, v Value, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, v, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile writes v to path in format f using opts.Encoding and returns the
// path written.
func SaveFile(path string, f Format, v Value, opts Options) (string, error) {
	err := writeFile(path, opts.Encoding, f, func(w io.Writer) error {
		return Write(w, f, v, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
