package transcript

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src := `# comment
>>> x = 1
>>> for i in range(2):
...     print(i)
...
0
1

>>> x
1
`
	tr, err := Parse("inline", strings.NewReader(src))
	require.NoError(t, err)

	want := []Example{
		{Source: "x = 1\n", Want: "", Line: 2},
		{Source: "for i in range(2):\n    print(i)\n\n", Want: "0\n1", Line: 3},
		{Source: "x\n", Want: "1", Line: 9},
	}
	if diff := cmp.Diff(want, tr.Examples); diff != "" {
		t.Errorf("examples mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsStrayText(t *testing.T) {
	_, err := Parse("bad", strings.NewReader("hello\n>>> 1\n1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad:1")
}

func TestCheckReportsFailures(t *testing.T) {
	src := ">>> 1 + 1\n2\n>>> 'a'\n'b'\n>>> print('x')\nx\n"
	tr, err := Parse("inline", strings.NewReader(src))
	require.NoError(t, err)

	res, err := tr.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Passed)
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, 3, f.Line)
	assert.Equal(t, "'a'", f.Got)
	assert.False(t, res.OK())

	var buf bytes.Buffer
	f.Report(&buf, res.Name)
	assert.Contains(t, buf.String(), "inline:3: example failed")
	assert.Contains(t, buf.String(), "    'b'")
}

func TestCheckFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	results, err := CheckFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.Name)
		for _, f := range res.Failures {
			var buf bytes.Buffer
			f.Report(&buf, res.Name)
			t.Error(buf.String())
		}
		assert.Positive(t, res.Passed)
	}
}

func TestCheckFilesMissing(t *testing.T) {
	_, err := CheckFiles(context.Background(), []string{filepath.Join("testdata", "nope.txt")}, 0)
	require.Error(t, err)
}
