package datafmt

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// WriteIter formats records from an iterator and writes them to w as they
// arrive. CSV, TSV, and JSONL write each record immediately; they need
// opts.Fields for CSV and TSV since the columns cannot be inferred up front.
// Table, JSON, YAML, and templates need the whole dataset and collect it
// first.
func WriteIter(w io.Writer, f Format, seq iter.Seq[*Record], opts Options) error {
	switch f {
	case CSV, TSV:
		if len(opts.Fields) == 0 {
			return fmt.Errorf("%w: streaming %s needs explicit fields", ErrShape, f)
		}
		return streamCSV(w, seq, opts.Fields, CSVDumpOptions{Header: opts.Header, Dialect: opts.dumpDialect(f)})
	case JSONL:
		return streamJSONL(w, seq)
	case JSON, YAML, Table:
		return Write(w, f, Dataset(slices.Collect(seq)).Value(), opts)
	default:
		if strings.HasPrefix(string(f), goTemplatePrefix) {
			return Write(w, f, Dataset(slices.Collect(seq)).Value(), opts)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteChan formats records from a channel and writes them to w.
// It is a thin wrapper around [WriteIter].
func WriteChan(w io.Writer, f Format, ch <-chan *Record, opts Options) error {
	return WriteIter(w, f, chanToIter(ch), opts)
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}

func streamCSV(w io.Writer, seq iter.Seq[*Record], fields []string, opts CSVDumpOptions) error {
	cw, err := newCSVWriter(w, opts.Dialect)
	if err != nil {
		return err
	}
	if opts.Header {
		if err := writeCSVRow(cw, fields); err != nil {
			return err
		}
	}
	for rec := range seq {
		row, err := csvRow(rec, fields)
		if err != nil {
			return err
		}
		if err := writeCSVRow(cw, row); err != nil {
			return err
		}
	}
	return nil
}

func streamJSONL(w io.Writer, seq iter.Seq[*Record]) error {
	for rec := range seq {
		if err := writeJSONLine(w, rec); err != nil {
			return err
		}
	}
	return nil
}
