package datafmt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func parseRows(t *testing.T, text string, d Dialect) [][]string {
	t.Helper()
	p, err := newCSVParser(text, d)
	require.NoError(t, err)
	var rows [][]string
	for {
		row, err := p.next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestCSVParser(t *testing.T) {
	t.Parallel()
	comma := Dialect{Delimiter: ',', Quote: '"', DoubleQuote: true}
	tests := map[string]struct {
		text    string
		dialect Dialect
		want    [][]string
	}{
		"simple": {
			text:    "a,b\n1,2\n",
			dialect: comma,
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		"no trailing newline": {
			text:    "a,b",
			dialect: comma,
			want:    [][]string{{"a", "b"}},
		},
		"quoted delimiter": {
			text:    `a,"b,c",d`,
			dialect: comma,
			want:    [][]string{{"a", "b,c", "d"}},
		},
		"quoted newline": {
			text:    "\"multi\nline\",x\ny,z\n",
			dialect: comma,
			want:    [][]string{{"multi\nline", "x"}, {"y", "z"}},
		},
		"doubled quote": {
			text:    `"a""b",c`,
			dialect: comma,
			want:    [][]string{{`a"b`, "c"}},
		},
		"text after closing quote": {
			text:    `"ab"c,d`,
			dialect: comma,
			want:    [][]string{{"abc", "d"}},
		},
		"quote inside unquoted field": {
			text:    `a"b,c`,
			dialect: comma,
			want:    [][]string{{`a"b`, "c"}},
		},
		"empty fields": {
			text:    ",,\n",
			dialect: comma,
			want:    [][]string{{"", "", ""}},
		},
		"blank line": {
			text:    "a\n\nb\n",
			dialect: comma,
			want:    [][]string{{"a"}, {}, {"b"}},
		},
		"mixed terminators": {
			text:    "a\r\nb\rc\n",
			dialect: comma,
			want:    [][]string{{"a"}, {"b"}, {"c"}},
		},
		"skip initial space": {
			text:    `a,  b, "c"`,
			dialect: Dialect{Delimiter: ',', Quote: '"', DoubleQuote: true, SkipInitialSpace: true},
			want:    [][]string{{"a", "b", "c"}},
		},
		"keep initial space": {
			text:    "a,  b",
			dialect: comma,
			want:    [][]string{{"a", "  b"}},
		},
		"no quoting": {
			text:    `"a",b`,
			dialect: Dialect{Delimiter: ','},
			want:    [][]string{{`"a"`, "b"}},
		},
		"single quote": {
			text:    `'it''s';x`,
			dialect: Dialect{Delimiter: ';', Quote: '\'', DoubleQuote: true},
			want:    [][]string{{"it's", "x"}},
		},
		"multibyte delimiter": {
			text:    "a、b\n山、田\n",
			dialect: Dialect{Delimiter: '、', Quote: '"', DoubleQuote: true},
			want:    [][]string{{"a", "b"}, {"山", "田"}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseRows(t, tt.text, tt.dialect))
		})
	}
}

func TestCSVParserUnterminated(t *testing.T) {
	t.Parallel()
	p, err := newCSVParser("a\nb\n\"c\nd", Dialect{Delimiter: ',', Quote: '"', DoubleQuote: true})
	require.NoError(t, err)

	for range 2 {
		_, err = p.next()
		require.NoError(t, err)
	}
	_, err = p.next()
	require.ErrorIs(t, err, ErrParse)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 3, e.Line)
	assert.ErrorIs(t, err, errUnterminated)
}

func TestNewCSVParserInvalidDialect(t *testing.T) {
	t.Parallel()
	for _, d := range []Dialect{
		{},
		{Delimiter: '"', Quote: '"'},
		{Delimiter: '\n', Quote: '"'},
	} {
		_, err := newCSVParser("a", d)
		assert.ErrorIs(t, err, ErrUnsupportedDialect)
	}
}

func TestGuessDelimiter(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		text      string
		want      rune
		wantSpace bool
	}{
		"comma":           {text: "a,b\n1,2\n", want: ','},
		"semicolon":       {text: "a;b;c\n1;2;3\n4;5;6\n", want: ';'},
		"colon":           {text: "a:b\n1:2\n", want: ':'},
		"comma and space": {text: "a, b\n1, 2\n", want: ',', wantSpace: true},
		"none":            {text: "abc\ndef\n", want: 0},
		"empty":           {text: "", want: 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, space := DefaultSniffer{}.guessDelimiter(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSpace, space)
		})
	}
}

func TestGuessDelimiterManyChunks(t *testing.T) {
	t.Parallel()
	// 25 lines so the sample is examined in three chunks.
	var sb strings.Builder
	for range 25 {
		sb.WriteString("a|b|c\n")
	}
	got, _ := DefaultSniffer{}.guessDelimiter(sb.String())
	assert.Equal(t, '|', got)
}

func TestGuessQuoteAndDelimiter(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		text        string
		quote       rune
		delim       rune
		doubleQuote bool
		skipSpace   bool
	}{
		"middle field":     {text: "a,\"b\",c\n", quote: '"', delim: ','},
		"first field":      {text: "\"a\";b\n", quote: '"', delim: ';'},
		"last field":       {text: "a\t\"b\"\n", quote: '"', delim: '\t'},
		"space after":      {text: "x, \"a\", \"b\"\n", quote: '"', delim: ',', skipSpace: true},
		"doubled quote":    {text: "x,\"a \"\"q\"\" b\",y\n", quote: '"', delim: ',', doubleQuote: true},
		"single quote":     {text: "x|'a'|y\n", quote: '\'', delim: '|'},
		"lone quoted line": {text: "\"only\"\n", quote: '"', delim: 0},
		"no quotes":        {text: "a,b\n", quote: 0, delim: 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			quote, delim, dq, space := DefaultSniffer{}.guessQuoteAndDelimiter(tt.text)
			assert.Equal(t, tt.quote, quote, "quote")
			assert.Equal(t, tt.delim, delim, "delimiter")
			assert.Equal(t, tt.doubleQuote, dq, "doublequote")
			assert.Equal(t, tt.skipSpace, space, "skipinitialspace")
		})
	}
}

func TestDetectTerminator(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "\n", detectTerminator("a\nb\r\n"))
	assert.Equal(t, "\r\n", detectTerminator("a\r\nb\n"))
	assert.Equal(t, "\r", detectTerminator("a\rb"))
	assert.Equal(t, "\r\n", detectTerminator("abc"))
}

func TestCounterTieBreak(t *testing.T) {
	t.Parallel()
	c := newCounter()
	c.add('b')
	c.add('a')
	c.add('a')
	c.add('b')
	assert.Equal(t, 'b', c.top())
	c.add('a')
	assert.Equal(t, 'a', c.top())
	assert.Equal(t, rune(0), newCounter().top())
}

func TestReadSample(t *testing.T) {
	t.Parallel()
	short, err := readSample(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", short)

	// A three-byte rune straddles the sample boundary.
	data := strings.Repeat("x", sampleSize-1) + "あ"
	sample, err := readSample(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", sampleSize-1), sample)
}

func TestLookupEncoding(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		name string
		want any
	}{
		"empty":     {name: "", want: unicode.UTF8},
		"utf-8":     {name: "UTF-8", want: unicode.UTF8},
		"utf-8-sig": {name: "utf-8-sig", want: unicode.UTF8BOM},
		"shift_jis": {name: "shift_jis", want: japanese.ShiftJIS},
		"sjis":      {name: "sjis", want: japanese.ShiftJIS},
		"cp932":     {name: " CP932 ", want: japanese.ShiftJIS},
		"euc-jp":    {name: "euc-jp", want: japanese.EUCJP},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			enc, err := lookupEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, enc)
		})
	}

	_, err := lookupEncoding("klingon")
	assert.Error(t, err)
}

func TestAlignCell(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "id ", alignCell("id", 3, Width, alignCenter))
	assert.Equal(t, " id  ", alignCell("id", 5, Width, alignCenter))
	assert.Equal(t, "x   ", alignCell("x", 4, Width, alignLeft))
	assert.Equal(t, " 山 ", alignCell("山", 4, Width, alignCenter))
	assert.Equal(t, "toolong", alignCell("toolong", 3, Width, alignLeft))
}

func TestColumnWidths(t *testing.T) {
	t.Parallel()
	got := columnWidths([]string{"a", "name"}, [][]string{{"xxxxx", "y"}}, Width)
	assert.Equal(t, []int{5, 4}, got)
}

func TestWriteCSVRowFlushes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cw, err := newCSVWriter(&buf, DialectCRLF)
	require.NoError(t, err)

	require.NoError(t, writeCSVRow(cw, []string{"a", "b c"}))
	assert.Equal(t, "a,b c\r\n", buf.String())

	require.NoError(t, writeCSVRow(cw, []string{""}))
	assert.Equal(t, "a,b c\r\n\"\"\r\n", buf.String())
}

func TestCSVCell(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		value Value
		want  string
	}{
		"null":     {value: Null(), want: ""},
		"bool":     {value: Bool(false), want: "false"},
		"number":   {value: Number("1.50"), want: "1.50"},
		"string":   {value: String(`it's "x"`), want: `it's "x"`},
		"sequence": {value: Sequence(String("a"), Null()), want: "['a',null]"},
		"mapping":  {value: Mapping(NewRecord(Entry{Key: "k", Value: String("v")})), want: "{'k': 'v'}"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := csvCell(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrapWriteError(t *testing.T) {
	t.Parallel()
	inner := &Error{Kind: ErrParse, Format: CSV}
	err := wrapWriteError(inner, CSV, "out.csv", ErrIO)
	assert.Same(t, inner, err)
	assert.Equal(t, "out.csv", inner.Source)

	err = wrapWriteError(ErrShape, CSV, "out.csv", ErrIO)
	assert.Equal(t, ErrShape, err)

	err = wrapWriteError(errors.New("boom"), CSV, "out.csv", ErrEncoding)
	assert.ErrorIs(t, err, ErrEncoding)
}
