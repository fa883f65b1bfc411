// Package datafmt loads and writes structured data as JSON, JSON Lines, YAML,
// CSV, and TSV, and renders datasets as fixed-width text tables.
//
// Every loader produces a [Value], a tagged variant over null, bool, number,
// string, sequence, and mapping. Mappings are [Record] values that keep keys
// in insertion order. A [Dataset] is an ordered slice of records and is what
// the CSV loader returns and what the CSV dumper and table renderer consume.
//
// # Loading
//
// Each format has an in-memory and a file variant; JSON can also be fetched
// from a URL:
//
//	v, err := datafmt.LoadJSON(data)
//	v, err := datafmt.LoadYAMLFile("config.yaml", "utf-8")
//	ds, err := datafmt.LoadCSVFile("people.csv", nil, "shift_jis")
//	v, err := datafmt.LoadJSONURL(ctx, "https://example.com/data.json")
//
// YAML scalars that resolve to strings stay strings, so "1.0" quoted in the
// source is never turned into a number.
//
// CSV input has its dialect sniffed from the first 8 KiB: delimiter, quote
// character, doubled quoting, and line terminator. Spaces after delimiters are
// always skipped. Supply [CSVOptions.Dialect] to skip sniffing, or a custom
// [Sniffer] to change how it is done.
//
// # Keys
//
// [Normalize] renames record keys through a [Keymap] and optionally forces
// snake_case:
//
//	rec = datafmt.Normalize(rec, datafmt.Keymap{"ID": "id"}, true)
//
// # Dumping
//
// Output is deterministic. JSON and YAML sort mapping keys; JSON keeps
// non-ASCII text literal; YAML uses two-space block style. CSV writes exactly
// the requested fields through [DialectLF], [DialectCRLF], or [DialectTSV]:
//
//	s, err := datafmt.DumpJSON(v, 2)
//	s, err := datafmt.DumpCSV(ds, []string{"name", "age"}, datafmt.CSVDumpOptions{Header: true})
//
// Nested mappings and sequences in CSV cells are written as JSON with double
// quotes replaced by single quotes. This is lossy: the loader cannot tell a
// replaced quote from an original apostrophe.
//
// # Tables
//
// [RenderTable] lays a dataset out as a Markdown-style table. Column widths
// account for double-width East Asian characters via [Width]; pass
// [TerminalWidth] in [TableOptions] to measure the way terminals do instead.
//
// # Format Selection
//
// [ParseFormat] and [FormatOf] turn a flag value or a file name into a
// [Format], and [Load], [Write], [Marshal], and [SaveFile] dispatch on it:
//
//	f, err := datafmt.ParseFormat(flagValue)
//	err = datafmt.Write(os.Stdout, f, v, datafmt.Options{Indent: 2})
//
// # Errors
//
// Errors raised by this package match one of the sentinels with [errors.Is].
// Load and save failures are [*Error] values that also carry the format and
// source, plus the line when the parser knows it.
//
//   - [ErrParse]: malformed JSON, YAML, or CSV
//   - [ErrDialect]: a CSV sample too uniform to sniff
//   - [ErrIO]: file or network access failed
//   - [ErrEncoding]: text could not be decoded or encoded
//   - [ErrShape]: data that is not a dataset given to a tabular format
//   - [ErrUnsupportedDialect]: a dialect the reader or writer cannot handle
//
// Nothing is retried and no failure is replaced by a default value.
package datafmt
