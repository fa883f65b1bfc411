package datafmt

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	errEmptySample    = errors.New("sample is empty")
	errNoDelimiter    = errors.New("no consistent delimiter found")
	errUnterminated   = errors.New("unexpected end of data inside quoted field")
	errInvalidDialect = errors.New("delimiter must be set and differ from the quote character")
)

// csvParser splits text into rows according to a dialect. It accepts "\n",
// "\r", and "\r\n" as row ends whatever the dialect's terminator.
//
// Parsing is lenient the same way common CSV readers are: a quote inside an
// unquoted field is kept literally, and characters after a closing quote are
// appended to the field.
type csvParser struct {
	d    Dialect
	text string
	pos  int
	line int
}

func newCSVParser(text string, d Dialect) (*csvParser, error) {
	if d.Delimiter == 0 || d.Delimiter == d.Quote || d.Delimiter == '\n' || d.Delimiter == '\r' {
		return nil, &Error{Kind: ErrUnsupportedDialect, Format: CSV, Err: errInvalidDialect}
	}
	return &csvParser{d: d, text: text, line: 1}, nil
}

func (p *csvParser) peek() (rune, int) {
	if p.pos >= len(p.text) {
		return -1, 0
	}
	return utf8.DecodeRuneInString(p.text[p.pos:])
}

// endRow consumes a row terminator at the current position, if any.
func (p *csvParser) endRow() bool {
	switch {
	case strings.HasPrefix(p.text[p.pos:], "\r\n"):
		p.pos += 2
	case p.pos < len(p.text) && (p.text[p.pos] == '\n' || p.text[p.pos] == '\r'):
		p.pos++
	default:
		return false
	}
	p.line++
	return true
}

// next returns the next row. Blank lines come back as empty rows. At the end
// of input it returns io.EOF.
func (p *csvParser) next() ([]string, error) {
	if p.pos >= len(p.text) {
		return nil, io.EOF
	}
	if p.endRow() {
		return []string{}, nil
	}
	var row []string
	for {
		field, err := p.field()
		if err != nil {
			return nil, err
		}
		row = append(row, field)
		r, size := p.peek()
		if r == p.d.Delimiter {
			p.pos += size
			continue
		}
		p.endRow()
		return row, nil
	}
}

func (p *csvParser) field() (string, error) {
	if p.d.SkipInitialSpace {
		for p.pos < len(p.text) && p.text[p.pos] == ' ' {
			p.pos++
		}
	}
	var sb strings.Builder
	if r, size := p.peek(); p.d.Quote != 0 && r == p.d.Quote {
		p.pos += size
		start := p.line
		for {
			r, size := p.peek()
			if r < 0 {
				return "", &Error{Kind: ErrParse, Format: CSV, Line: start, Err: errUnterminated}
			}
			p.pos += size
			if r == '\n' || (r == '\r' && !strings.HasPrefix(p.text[p.pos:], "\n")) {
				p.line++
			}
			if r != p.d.Quote {
				sb.WriteRune(r)
				continue
			}
			if next, nsize := p.peek(); p.d.DoubleQuote && next == p.d.Quote {
				p.pos += nsize
				sb.WriteRune(r)
				continue
			}
			break
		}
	}
	for {
		r, size := p.peek()
		if r < 0 || r == p.d.Delimiter || r == '\n' || r == '\r' {
			return sb.String(), nil
		}
		sb.WriteRune(r)
		p.pos += size
	}
}
