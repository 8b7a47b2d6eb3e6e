package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.xs.sh/pkg/eval"
	"src.xs.sh/pkg/ext"
	"src.xs.sh/pkg/must"
	"src.xs.sh/pkg/store"
	"src.xs.sh/pkg/store/storedefs"
)

// Runs a session with the given input and returns what it wrote to stdout
// and stderr.
func interact(t *testing.T, input string, st storedefs.Store) (string, string) {
	t.Helper()
	dir := t.TempDir()
	must.WriteFile(filepath.Join(dir, "in"), input)
	in := must.OK1(os.Open(filepath.Join(dir, "in")))
	defer in.Close()
	out := must.OK1(os.Create(filepath.Join(dir, "out")))
	defer out.Close()
	errOut := must.OK1(os.Create(filepath.Join(dir, "err")))
	defer errOut.Close()

	ev, err := eval.NewEvaler(nil, ext.All()...)
	require.NoError(t, err)
	err = Interact([3]*os.File{in, out, errOut}, &Config{Evaler: ev, Store: st})
	require.NoError(t, err)
	return must.ReadFileString(out.Name()), must.ReadFileString(errOut.Name())
}

func TestInteract_Values(t *testing.T) {
	out, errOut := interact(t, "var x = 1;\nx + 1\n\"a\" + x\n", nil)
	assert.Contains(t, out, "2\n")
	assert.Contains(t, out, `"a1"`+"\n")
	assert.Empty(t, errOut)
}

func TestInteract_Continuation(t *testing.T) {
	out, errOut := interact(t, "var s = \"a\" +\n  \"b\";\ns\n", nil)
	assert.Contains(t, out, contPrompt)
	assert.Contains(t, out, `"ab"`+"\n")
	assert.Empty(t, errOut)
}

func TestInteract_IncompleteAtEOF(t *testing.T) {
	_, errOut := interact(t, "1 +", nil)
	assert.NotEmpty(t, errOut)
}

func TestInteract_ErrorsKeepSession(t *testing.T) {
	out, errOut := interact(t, "var a = 5;\nnope\na\n", nil)
	assert.Contains(t, errOut, "variable not found: nope")
	assert.Contains(t, out, "5\n")
}

func TestInteract_Exception(t *testing.T) {
	_, errOut := interact(t, "var z = 0;\n1 / z\n", nil)
	assert.Contains(t, errOut, "DivideByZero")
}

func TestInteract_Commands(t *testing.T) {
	out, errOut := interact(t, "var b = 1;\nvar a = 2;\n:names\n:help\n:show 1 + 2\n:bogus\n", nil)
	assert.Contains(t, out, "a b\n")
	assert.Contains(t, out, ":quit")
	assert.Contains(t, out, "Binary")
	assert.Contains(t, errOut, "unknown command :bogus")
}

func TestInteract_Quit(t *testing.T) {
	out, _ := interact(t, "40 + 1\n:quit\n40 + 2\n", nil)
	assert.Contains(t, out, "41\n")
	assert.NotContains(t, out, "42")
}

func TestInteract_History(t *testing.T) {
	st := store.MustTempStore(t)
	out, _ := interact(t, "1 + 1\nbad\n:history\n", st)

	upto, err := st.NextSeq()
	require.NoError(t, err)
	entries, err := st.Range(0, upto)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1 + 1", entries[0].Text)
	assert.False(t, entries[0].Failed)
	assert.Equal(t, "bad", entries[1].Text)
	assert.True(t, entries[1].Failed)

	assert.Contains(t, out, "    1  1 + 1\n")
	assert.Contains(t, out, "    2! bad\n")
}

func TestInteract_HistoryWithoutStore(t *testing.T) {
	_, errOut := interact(t, ":history\n", nil)
	assert.Contains(t, errOut, "no history store")
}

func TestLoadHistory(t *testing.T) {
	assert.Nil(t, loadHistory(nil))

	st := store.MustTempStore(t)
	st.Add(storedefs.Entry{Text: "first"})
	st.Add(storedefs.Entry{Text: "second"})
	assert.Equal(t, []string{"first", "second"}, loadHistory(st))
}
