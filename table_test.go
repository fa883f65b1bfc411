package datafmt_test

import (
	"strings"
	"testing"

	"github.com/bjaus/datafmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidth(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		want  int
	}{
		"empty":     {input: "", want: 0},
		"ascii":     {input: "abc", want: 3},
		"fullwidth": {input: "ＡＢＣ", want: 6},
		"mixed":     {input: "Ａbしー", want: 7},
		"kanji":     {input: "山田", want: 4},
		"halfwidth": {input: "ｱｲ", want: 2},
		"ambiguous": {input: "α", want: 2},
		"spaces":    {input: "a b", want: 3},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, datafmt.Width(tt.input))
		})
	}
}

func TestTerminalWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, datafmt.TerminalWidth("abc"))
	assert.Equal(t, 6, datafmt.TerminalWidth("ＡＢＣ"))
	assert.Equal(t, 1, datafmt.TerminalWidth("α"))
	assert.Equal(t, 1, datafmt.TerminalWidth("é"))
}

func TestRenderTable(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		ds     datafmt.Dataset
		fields []string
		want   string
	}{
		"basic": {
			ds:     datafmt.Dataset{rec("name", "x", "age", "1")},
			fields: []string{"name", "age"},
			want: "| name | age |\n" +
				"| ---- | --- |\n" +
				"| x    | 1   |\n",
		},
		"minimum width": {
			ds:     datafmt.Dataset{rec("a", "b")},
			fields: []string{"a"},
			want: "|  a  |\n" +
				"| --- |\n" +
				"| b   |\n",
		},
		"odd padding goes right": {
			ds:     datafmt.Dataset{rec("id", "12345")},
			fields: []string{"id"},
			want: "|  id   |\n" +
				"| ----- |\n" +
				"| 12345 |\n",
		},
		"missing field is null": {
			ds:     datafmt.Dataset{rec("a", "1"), rec("b", "2")},
			fields: []string{"a"},
			want: "|  a   |\n" +
				"| ---- |\n" +
				"| 1    |\n" +
				"| null |\n",
		},
		"wide characters": {
			ds:     datafmt.Dataset{rec("名前", "山田太郎")},
			fields: []string{"名前"},
			want: "|   名前   |\n" +
				"| -------- |\n" +
				"| 山田太郎 |\n",
		},
		"values": {
			ds:     datafmt.Dataset{rec("b", true, "n", 1.5, "l", []any{1, "x"})},
			fields: []string{"b", "n", "l"},
			want: "|  b   |  n  |    l    |\n" +
				"| ---- | --- | ------- |\n" +
				"| true | 1.5 | [1,\"x\"] |\n",
		},
		"empty dataset": {
			ds:     datafmt.Dataset{},
			fields: []string{"a", "b"},
			want: "|  a  |  b  |\n" +
				"| --- | --- |\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, datafmt.RenderTable(tt.ds, tt.fields))
		})
	}
}

func TestWriteTableWidthFunc(t *testing.T) {
	t.Parallel()
	ds := datafmt.Dataset{rec("k", "αβ")}

	assert.Equal(t, "|  k   |\n| ---- |\n| αβ |\n", datafmt.RenderTable(ds, []string{"k"}))

	got, err := datafmt.Marshal(datafmt.Table, ds.Value(), datafmt.Options{Width: datafmt.TerminalWidth})
	require.NoError(t, err)
	assert.Equal(t, "|  k  |\n| --- |\n| αβ  |\n", string(got))
}

func TestWriteTableError(t *testing.T) {
	t.Parallel()
	err := datafmt.WriteTable(errWriter{}, datafmt.Dataset{rec("a", "1")}, []string{"a"}, datafmt.TableOptions{})
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestRenderTemplate(t *testing.T) {
	t.Parallel()
	ds := datafmt.Dataset{rec("name", "x", "tags", []any{"a", "b"}), rec("name", "y", "tags", []any{})}

	var sb strings.Builder
	err := datafmt.RenderTemplate(&sb, `{{.name}}:{{range .tags}} {{.}}{{end}}`, ds)
	require.NoError(t, err)
	assert.Equal(t, "x: a b\ny:\n", sb.String())

	err = datafmt.RenderTemplate(&sb, `{{.name`, ds)
	assert.ErrorIs(t, err, datafmt.ErrInvalidTemplate)
}
