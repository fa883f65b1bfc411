package datafmt

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// sampleSize is how much of a CSV document the sniffer sees.
const sampleSize = 8192

// CSVOptions configures a CSV load.
type CSVOptions struct {
	// Header names the fields. Nil means the first row is the header.
	Header []string

	// Dialect skips sniffing when set.
	Dialect *Dialect

	// Sniffer replaces DefaultSniffer.
	Sniffer Sniffer

	// RestKey collects fields beyond the header as a sequence under this
	// key. Empty drops them.
	RestKey string
}

// LoadCSV parses CSV text with a sniffed dialect. A nil header means the
// first row names the fields. Every cell is a string; fields missing from a
// short row are null.
func LoadCSV(data []byte, header []string) (Dataset, error) {
	return LoadCSVReader(bytes.NewReader(data), CSVOptions{Header: header})
}

// LoadCSVFile reads the CSV file at path, decoding it with the named text
// encoding, and parses it like [LoadCSV].
func LoadCSVFile(path string, header []string, encoding string) (Dataset, error) {
	data, err := readFile(path, encoding, CSV)
	if err != nil {
		return nil, err
	}
	ds, err := LoadCSV(data, header)
	return ds, withSource(err, path)
}

// LoadCSVReader sniffs the dialect from the first 8 KiB of r, seeks back to
// the start, and parses the whole document. Spaces after a delimiter are
// always skipped.
func LoadCSVReader(r io.ReadSeeker, opts CSVOptions) (Dataset, error) {
	var d Dialect
	if opts.Dialect != nil {
		d = *opts.Dialect
	} else {
		sample, err := readSample(r)
		if err != nil {
			return nil, err
		}
		sniffer := opts.Sniffer
		if sniffer == nil {
			sniffer = DefaultSniffer{}
		}
		d, err = sniffer.Sniff(sample)
		if err != nil {
			return nil, err
		}
		d.SkipInitialSpace = true
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, &Error{Kind: ErrIO, Format: CSV, Err: err}
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Format: CSV, Err: err}
	}
	return parseCSV(string(data), d, opts)
}

func readSample(r io.Reader) (string, error) {
	buf := make([]byte, sampleSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", &Error{Kind: ErrIO, Format: CSV, Err: err}
	}
	buf = buf[:n]
	// drop a rune cut in half by the sample boundary
	for i := 0; i < utf8.UTFMax && len(buf) > 0 && !utf8.Valid(buf); i++ {
		buf = buf[:len(buf)-1]
	}
	return string(buf), nil
}

func parseCSV(text string, d Dialect, opts CSVOptions) (Dataset, error) {
	p, err := newCSVParser(text, d)
	if err != nil {
		return nil, err
	}
	header := opts.Header
	ds := Dataset{}
	for {
		row, err := p.next()
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		if header == nil {
			header = row
			continue
		}
		ds = append(ds, rowRecord(header, row, opts.RestKey))
	}
}

func rowRecord(header, row []string, restKey string) *Record {
	rec := NewRecord()
	for i, name := range header {
		if i < len(row) {
			rec.Set(name, String(row[i]))
		} else {
			rec.Set(name, Null())
		}
	}
	if restKey != "" && len(row) > len(header) {
		rest := make([]Value, 0, len(row)-len(header))
		for _, cell := range row[len(header):] {
			rest = append(rest, String(cell))
		}
		rec.Set(restKey, Sequence(rest...))
	}
	return rec
}

// CSVDumpOptions configures CSV output.
type CSVDumpOptions struct {
	// Header writes the field names as the first row.
	Header bool

	// Dialect selects the output layout. The zero value means DialectLF.
	Dialect Dialect
}

// DumpCSV serializes the given fields of every record, in order. Keys not in
// fields are ignored and missing fields are written empty. Mappings and
// sequences are written as JSON with every '"' turned into '\'', which the
// loader does not undo.
func DumpCSV(ds Dataset, fields []string, opts CSVDumpOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds, fields, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV writes [DumpCSV] output to w.
func WriteCSV(w io.Writer, ds Dataset, fields []string, opts CSVDumpOptions) error {
	cw, err := newCSVWriter(w, opts.Dialect)
	if err != nil {
		return err
	}
	if opts.Header {
		if err := cw.write(fields); err != nil {
			return err
		}
	}
	for _, rec := range ds {
		if err := cw.writeRecord(rec, fields); err != nil {
			return err
		}
	}
	return cw.flush()
}

// SaveCSVFile writes [DumpCSV] output to path in the named encoding and
// returns path.
func SaveCSVFile(ds Dataset, fields []string, path, encoding string, opts CSVDumpOptions) (string, error) {
	err := writeFile(path, encoding, CSV, func(w io.Writer) error {
		return WriteCSV(w, ds, fields, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// csvWriter is an encoding/csv writer configured from a Dialect.
type csvWriter struct {
	*csv.Writer
	w          io.Writer
	terminator string
}

func newCSVWriter(w io.Writer, d Dialect) (*csvWriter, error) {
	if d == (Dialect{}) {
		d = DialectLF
	}
	if d.Quote != '"' || !d.DoubleQuote {
		return nil, fmt.Errorf("%w: output must quote with '\"' doubled, got %q", ErrUnsupportedDialect, d.Quote)
	}
	cw := csv.NewWriter(w)
	cw.Comma = d.Delimiter
	switch d.LineTerminator {
	case "\n":
	case "\r\n":
		cw.UseCRLF = true
	default:
		return nil, fmt.Errorf("%w: line terminator %q", ErrUnsupportedDialect, d.LineTerminator)
	}
	return &csvWriter{Writer: cw, w: w, terminator: d.LineTerminator}, nil
}

// write writes one row. A row made of a single empty field is written as
// "" so that it does not read back as a blank line.
func (cw *csvWriter) write(row []string) error {
	if len(row) == 1 && row[0] == "" {
		if err := cw.flush(); err != nil {
			return err
		}
		_, err := io.WriteString(cw.w, `""`+cw.terminator)
		return err
	}
	return cw.Write(row)
}

func (cw *csvWriter) writeRecord(rec *Record, fields []string) error {
	row, err := csvRow(rec, fields)
	if err != nil {
		return err
	}
	return cw.write(row)
}

func (cw *csvWriter) flush() error {
	cw.Flush()
	return cw.Error()
}

func csvRow(rec *Record, fields []string) ([]string, error) {
	row := make([]string, len(fields))
	for i, f := range fields {
		v, ok := rec.Get(f)
		if !ok {
			continue
		}
		cell, err := csvCell(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f, err)
		}
		row[i] = cell
	}
	return row, nil
}

func csvCell(v Value) (string, error) {
	switch v.Kind() {
	case NullKind:
		return "", nil
	case SequenceKind, MappingKind:
		s, err := DumpJSON(v, 0)
		if err != nil {
			return "", err
		}
		return strings.ReplaceAll(s, `"`, "'"), nil
	default:
		return v.String(), nil
	}
}

// writeCSVRow writes a single row and flushes it.
func writeCSVRow(cw *csvWriter, row []string) error {
	if err := cw.write(row); err != nil {
		return err
	}
	return cw.flush()
}
