package datafmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// LoadJSONL parses JSON Lines: one object per line. Blank lines are ignored.
func LoadJSONL(data []byte) (Dataset, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	ds := Dataset{}
	for {
		raw, err := dec.ReadValue()
		if errors.Is(err, io.EOF) {
			return ds, nil
		}
		if err != nil {
			return nil, jsonParseError(JSONL, err)
		}
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, jsonParseError(JSONL, err)
		}
		rec, ok := v.Record()
		if !ok {
			return nil, &Error{Kind: ErrParse, Format: JSONL, Line: len(ds) + 1, Err: fmt.Errorf("%w: %s is not an object", ErrShape, v.Kind())}
		}
		ds = append(ds, rec)
	}
}

// DumpJSONL serializes ds with one canonical JSON object per line.
func DumpJSONL(ds Dataset) (string, error) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, ds); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteJSONL writes [DumpJSONL] output to w.
func WriteJSONL(w io.Writer, ds Dataset) error {
	for _, rec := range ds {
		if err := writeJSONLine(w, rec); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONLine(w io.Writer, rec *Record) error {
	s, err := DumpJSON(Mapping(rec), 0)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s+"\n")
	return err
}
