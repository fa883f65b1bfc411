package datafmt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// MarshalJSONTo writes v as canonical JSON: mapping keys in sorted order and
// number literals as stored.
func (v Value) MarshalJSONTo(enc *jsontext.Encoder) error {
	switch v.kind {
	case NullKind:
		return enc.WriteToken(jsontext.Null)
	case BoolKind:
		return enc.WriteToken(jsontext.Bool(v.b))
	case NumberKind:
		return enc.WriteValue(jsontext.Value(v.s))
	case StringKind:
		return enc.WriteToken(jsontext.String(v.s))
	case SequenceKind:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v.seq {
			if err := item.MarshalJSONTo(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, k := range v.rec.SortedKeys() {
			if err := enc.WriteToken(jsontext.String(k)); err != nil {
				return err
			}
			item, _ := v.rec.Get(k)
			if err := item.MarshalJSONTo(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	}
}

// UnmarshalJSONFrom reads one JSON value, keeping object members in document
// order and numbers as their literal text.
func (v *Value) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	switch dec.PeekKind() {
	case '{':
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		rec := NewRecord()
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return err
			}
			// tok is only valid until the next decoder call
			name := tok.String()
			var item Value
			if err := item.UnmarshalJSONFrom(dec); err != nil {
				return err
			}
			rec.Set(name, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		*v = Mapping(rec)
		return nil
	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		items := []Value{}
		for dec.PeekKind() != ']' {
			var item Value
			if err := item.UnmarshalJSONFrom(dec); err != nil {
				return err
			}
			items = append(items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return err
		}
		*v = Sequence(items...)
		return nil
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return err
		}
		*v = Number(string(raw))
		return nil
	default:
		tok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		switch tok.Kind() {
		case 'n':
			*v = Null()
		case 't', 'f':
			*v = Bool(tok.Bool())
		case '"':
			*v = String(tok.String())
		default:
			return fmt.Errorf("unexpected token %v", tok.Kind())
		}
		return nil
	}
}

func jsonOptions(indent int) []json.Options {
	opts := []json.Options{
		jsontext.SpaceAfterColon(true),
		jsontext.SpaceAfterComma(false),
	}
	if indent > 0 {
		opts = append(opts, jsontext.WithIndent(strings.Repeat(" ", indent)))
	}
	return opts
}

// LoadJSON parses a single JSON document. Duplicate object names, invalid
// UTF-8, and trailing data are parse errors.
func LoadJSON(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, jsonParseError(JSON, err)
	}
	return v, nil
}

// LoadJSONFile reads and parses the JSON file at path, decoding it with the
// named text encoding.
func LoadJSONFile(path, encoding string) (Value, error) {
	data, err := readFile(path, encoding, JSON)
	if err != nil {
		return Value{}, err
	}
	v, err := LoadJSON(data)
	return v, withSource(err, path)
}

// LoadJSONURL fetches url and parses the response body as JSON. There is no
// timeout or retry beyond what ctx imposes.
func LoadJSONURL(ctx context.Context, url string) (Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Value{}, &Error{Kind: ErrIO, Format: JSON, Source: url, Err: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Value{}, &Error{Kind: ErrIO, Format: JSON, Source: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Value{}, &Error{Kind: ErrIO, Format: JSON, Source: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Value{}, &Error{Kind: ErrIO, Format: JSON, Source: url, Err: err}
	}
	v, err := LoadJSON(data)
	return v, withSource(err, url)
}

// DumpJSON serializes v with sorted keys, literal non-ASCII text, and ": "
// after member names. An indent of 0 writes a single line.
func DumpJSON(v Value, indent int) (string, error) {
	b, err := json.Marshal(v, jsonOptions(indent)...)
	if err != nil {
		return "", &Error{Kind: ErrShape, Format: JSON, Err: err}
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// WriteJSON writes [DumpJSON] output to w.
func WriteJSON(w io.Writer, v Value, indent int) error {
	s, err := DumpJSON(v, indent)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// SaveJSONFile writes [DumpJSON] output to path in the named encoding and
// returns path.
func SaveJSONFile(v Value, path, encoding string, indent int) (string, error) {
	return SaveFile(path, JSON, v, Options{Encoding: encoding, Indent: indent})
}

func jsonParseError(f Format, err error) error {
	return &Error{Kind: ErrParse, Format: f, Err: err}
}
