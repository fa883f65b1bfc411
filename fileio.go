package datafmt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodingAliases covers names that neither the WHATWG nor the IANA index
// knows.
var encodingAliases = map[string]encoding.Encoding{
	"utf-8-sig": unicode.UTF8BOM,
	"utf8-sig":  unicode.UTF8BOM,
	"cp932":     japanese.ShiftJIS,
	"ms932":     japanese.ShiftJIS,
}

// lookupEncoding resolves a text encoding name. Empty means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return unicode.UTF8, nil
	}
	if enc, ok := encodingAliases[key]; ok {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == encoding.Nop
}

// readFile returns the contents of path decoded to UTF-8.
func readFile(path, encName string, f Format) ([]byte, error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return nil, &Error{Kind: ErrEncoding, Format: f, Source: path, Err: err}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Format: f, Source: path, Err: err}
	}
	if isUTF8(enc) {
		if !utf8.Valid(raw) {
			return nil, &Error{Kind: ErrEncoding, Format: f, Source: path, Err: errors.New("invalid UTF-8")}
		}
		return raw, nil
	}
	data, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &Error{Kind: ErrEncoding, Format: f, Source: path, Err: err}
	}
	return data, nil
}

// writeFile creates path and lets write fill it through an encoder for
// encName. The file is closed on every path; when write fails part way the
// file content is whatever was written so far.
func writeFile(path, encName string, f Format, write func(io.Writer) error) (err error) {
	enc, err := lookupEncoding(encName)
	if err != nil {
		return &Error{Kind: ErrEncoding, Format: f, Source: path, Err: err}
	}
	file, err := os.Create(path)
	if err != nil {
		return &Error{Kind: ErrIO, Format: f, Source: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &Error{Kind: ErrIO, Format: f, Source: path, Err: cerr}
		}
	}()

	if isUTF8(enc) {
		if err := write(file); err != nil {
			return wrapWriteError(err, f, path, ErrIO)
		}
		return nil
	}
	tw := transform.NewWriter(file, enc.NewEncoder())
	if err := write(tw); err != nil {
		return wrapWriteError(err, f, path, ErrEncoding)
	}
	if err := tw.Close(); err != nil {
		return wrapWriteError(err, f, path, ErrEncoding)
	}
	return nil
}

// wrapWriteError classifies an error raised while writing a file. Errors
// from this package pass through; file system errors are ErrIO; anything
// else is charged to fallback.
func wrapWriteError(err error, f Format, path string, fallback error) error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return withSource(err, path)
	case errors.Is(err, ErrShape), errors.Is(err, ErrUnsupportedDialect),
		errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrInvalidTemplate):
		return err
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		fallback = ErrIO
	}
	return &Error{Kind: fallback, Format: f, Source: path, Err: err}
}
