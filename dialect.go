package datafmt

import (
	"cmp"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Dialect describes how a CSV document is laid out.
type Dialect struct {
	Delimiter        rune
	Quote            rune // 0 disables quoting on read
	DoubleQuote      bool // a doubled quote inside a quoted field is a literal quote
	SkipInitialSpace bool // ignore spaces right after a delimiter
	LineTerminator   string
}

// Output dialects. All quote with '"' only where needed and double embedded
// quotes.
var (
	DialectLF   = Dialect{Delimiter: ',', Quote: '"', DoubleQuote: true, SkipInitialSpace: true, LineTerminator: "\n"}
	DialectCRLF = Dialect{Delimiter: ',', Quote: '"', DoubleQuote: true, SkipInitialSpace: true, LineTerminator: "\r\n"}
	DialectTSV  = Dialect{Delimiter: '\t', Quote: '"', DoubleQuote: true, LineTerminator: "\n"}
)

// Sniffer guesses a dialect from a leading sample of a CSV document.
type Sniffer interface {
	Sniff(sample string) (Dialect, error)
}

// SnifferFunc adapts a function to the [Sniffer] interface.
type SnifferFunc func(sample string) (Dialect, error)

// Sniff calls f(sample).
func (f SnifferFunc) Sniff(sample string) (Dialect, error) { return f(sample) }

// DefaultSniffer detects the delimiter, quote character, doubled quoting,
// and line terminator of a sample.
//
// Quoted fields are examined first: the characters around them reveal both
// the quote and the delimiter. Without quoted fields the delimiter is the
// character whose count per line is the most consistent across the sample.
type DefaultSniffer struct {
	// Delimiters restricts the candidates. Empty allows any ASCII character.
	Delimiters string
}

var preferredDelimiters = []rune{',', '\t', ';', ' ', ':'}

// Sniff implements [Sniffer].
func (s DefaultSniffer) Sniff(sample string) (Dialect, error) {
	if strings.TrimSpace(sample) == "" {
		return Dialect{}, &Error{Kind: ErrDialect, Format: CSV, Err: errEmptySample}
	}
	terminator := detectTerminator(sample)
	text := strings.ReplaceAll(sample, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	quote, delim, doubleQuote, skipSpace := s.guessQuoteAndDelimiter(text)
	if delim == 0 {
		delim, skipSpace = s.guessDelimiter(text)
	}
	if delim == 0 {
		return Dialect{}, &Error{Kind: ErrDialect, Format: CSV, Err: errNoDelimiter}
	}
	if quote == 0 {
		quote = '"'
		doubleQuote = true
	}
	return Dialect{
		Delimiter:        delim,
		Quote:            quote,
		DoubleQuote:      doubleQuote,
		SkipInitialSpace: skipSpace,
		LineTerminator:   terminator,
	}, nil
}

func (s DefaultSniffer) allowed(r rune) bool {
	return s.Delimiters == "" || strings.ContainsRune(s.Delimiters, r)
}

func detectTerminator(sample string) string {
	i := strings.IndexAny(sample, "\r\n")
	switch {
	case i < 0:
		return "\r\n"
	case sample[i] == '\n':
		return "\n"
	case i+1 < len(sample) && sample[i+1] == '\n':
		return "\r\n"
	default:
		return "\r"
	}
}

// Quoted field shapes, tried in order until one matches. Q stands for the
// quote character. Delimiters are any character that is not a word
// character, a newline, or a quote.
var quotedFieldShapes = [][]quotedFieldPattern{
	compileShape(`(?s)([^\w\n"'])( ?)Q.*?Q([^\w\n"'])`), // ,"x",
	compileShape(`(?s)(?:^|\n)Q.*?Q([^\w\n"'])( ?)`),    // "x",
	compileShape(`(?s)([^\w\n"'])( ?)Q.*?Q(?:$|\n)`),    // ,"x"
	compileShape(`(?s)(?:^|\n)Q.*?Q(?:$|\n)`),           // "x"
}

type quotedFieldPattern struct {
	quote rune
	re    *regexp.Regexp
}

func compileShape(pattern string) []quotedFieldPattern {
	out := make([]quotedFieldPattern, 0, 2)
	for _, q := range []rune{'"', '\''} {
		out = append(out, quotedFieldPattern{
			quote: q,
			re:    regexp.MustCompile(strings.ReplaceAll(pattern, "Q", regexp.QuoteMeta(string(q)))),
		})
	}
	return out
}

type quoteMatch struct {
	quote rune
	delim rune
	space bool
}

func (s DefaultSniffer) guessQuoteAndDelimiter(text string) (quote, delim rune, doubleQuote, skipSpace bool) {
	var matches []quoteMatch
	for shape, patterns := range quotedFieldShapes {
		for _, p := range patterns {
			for _, m := range p.re.FindAllStringSubmatch(text, -1) {
				qm := quoteMatch{quote: p.quote}
				switch shape {
				case 0:
					if m[1] != m[3] {
						continue
					}
					qm.delim, qm.space = firstRune(m[1]), m[2] != ""
				case 1, 2:
					qm.delim, qm.space = firstRune(m[1]), m[2] != ""
				}
				matches = append(matches, qm)
			}
		}
		if len(matches) > 0 {
			break
		}
	}
	if len(matches) == 0 {
		return 0, 0, false, false
	}

	quotes := newCounter()
	delims := newCounter()
	spaces := 0
	for _, m := range matches {
		quotes.add(m.quote)
		if m.delim != 0 && s.allowed(m.delim) {
			delims.add(m.delim)
		}
		if m.space {
			spaces++
		}
	}
	quote = quotes.top()
	delim = delims.top()
	if delim == '\n' {
		delim = 0
	}
	skipSpace = delim != 0 && delims.counts[delim] == spaces

	d := ""
	if delim != 0 {
		d = regexp.QuoteMeta(string(delim))
	}
	qs := regexp.QuoteMeta(string(quote))
	notDelim := `[^` + d + `\n]`
	pattern := `\W*` + qs + notDelim + `*` + qs + notDelim + `*` + qs + `\W*`
	if d != "" {
		pattern = `(?m)(` + d + `|^)` + pattern + `(` + d + `|$)`
	}
	doubleQuote = regexp.MustCompile(pattern).MatchString(text)
	return quote, delim, doubleQuote, skipSpace
}

// guessDelimiter picks the character whose per-line count is the same on
// the largest share of lines, working through the sample ten lines at a time.
func (s DefaultSniffer) guessDelimiter(text string) (rune, bool) {
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return 0, false
	}

	chunk := min(10, len(lines))
	freqs := make(map[rune]*counter)
	modes := make(map[rune]mode)
	delims := make(map[rune]mode)
	for iteration, start := 1, 0; start < len(lines); iteration, start = iteration+1, start+chunk {
		end := min(start+chunk, len(lines))
		for _, line := range lines[start:end] {
			for c := rune(0); c < 127; c++ {
				f, ok := freqs[c]
				if !ok {
					f = newCounter()
					freqs[c] = f
				}
				f.add(rune(strings.Count(line, string(c))))
			}
		}
		for c, f := range freqs {
			if len(f.order) == 1 && f.order[0] == 0 {
				continue
			}
			top := f.top()
			others := 0
			for _, k := range f.order {
				if k != top {
					others += f.counts[k]
				}
			}
			modes[c] = mode{freq: int(top), weight: f.counts[top] - others}
		}

		total := float64(min(chunk*iteration, len(lines)))
		for consistency := 1.0; len(delims) == 0 && consistency >= 0.9; consistency -= 0.01 {
			for c, m := range modes {
				if m.freq > 0 && m.weight > 0 && float64(m.weight)/total >= consistency && s.allowed(c) {
					delims[c] = m
				}
			}
		}
		if len(delims) == 1 {
			for c := range delims {
				return c, skipsSpace(lines[0], c)
			}
		}
	}
	if len(delims) == 0 {
		return 0, false
	}
	for _, c := range preferredDelimiters {
		if _, ok := delims[c]; ok {
			return c, skipsSpace(lines[0], c)
		}
	}
	best := slices.MaxFunc(slices.Collect(maps.Keys(delims)), func(a, b rune) int {
		return cmp.Or(
			cmp.Compare(delims[a].freq, delims[b].freq),
			cmp.Compare(delims[a].weight, delims[b].weight),
			cmp.Compare(a, b),
		)
	})
	return best, skipsSpace(lines[0], best)
}

func skipsSpace(line string, delim rune) bool {
	return strings.Count(line, string(delim)) == strings.Count(line, string(delim)+" ")
}

type mode struct {
	freq   int
	weight int
}

// counter tallies occurrences and remembers first-seen order so ties resolve
// to the earliest key.
type counter struct {
	counts map[rune]int
	order  []rune
}

func newCounter() *counter { return &counter{counts: make(map[rune]int)} }

func (c *counter) add(k rune) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k]++
}

func (c *counter) top() rune {
	var best rune
	bestN := 0
	for _, k := range c.order {
		if n := c.counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
