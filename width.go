package datafmt

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"
)

// WidthFunc measures how many terminal columns a string occupies.
type WidthFunc func(string) int

// Width returns the display width of s: two columns for every character
// whose East Asian width is Fullwidth, Wide, or Ambiguous, one for every
// other character.
func Width(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianFullwidth, width.EastAsianWide, width.EastAsianAmbiguous:
			n += 2
		default:
			n++
		}
	}
	return n
}

var terminal = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// TerminalWidth measures s the way most terminals draw it outside East Asian
// locales: ambiguous characters are narrow, combining marks take no space,
// and emoji sequences count once.
func TerminalWidth(s string) int {
	return terminal.StringWidth(s)
}
