package datafmt_test

import (
	"testing"

	"github.com/bjaus/datafmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec builds a record from alternating keys and values.
func rec(kv ...any) *datafmt.Record {
	r := datafmt.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), datafmt.MustValueOf(kv[i+1]))
	}
	return r
}

func assertDatasetEqual(t *testing.T, want, got datafmt.Dataset) {
	t.Helper()
	require.Len(t, got, len(want), spew.Sdump(got))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "record %d\nwant: %v\ngot:  %v", i, want[i].Map(), got[i].Map())
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errWriteFailed }
