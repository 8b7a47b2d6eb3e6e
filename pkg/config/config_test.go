package config_test

import (
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"src.xs.sh/pkg/config"
	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/testutil"
)

const full = `
require-termination: true
history-db: /tmp/history.db
references:
  - name: XS.Text
    version: ^1.0
  - name: XS.Json
debug:
  mode: statements
  breakpoints: ["3", "4:2-5"]
emit:
  package: calc
  type: Adder
  func: Sum
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse("xs.yaml", []byte(full))
	require.NoError(t, err)
	assert.True(t, cfg.RequireTermination)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
	assert.Equal(t, []config.Reference{{"XS.Text", "^1.0"}, {"XS.Json", ""}}, cfg.References)
	assert.Equal(t, "XS.Text, ^1.0", cfg.References[0].String())
	assert.Equal(t, "XS.Json", cfg.References[1].String())

	c, err := cfg.References[0].Constraint()
	require.NoError(t, err)
	assert.True(t, c.Check(semver.MustParse("1.4.0")))
	assert.False(t, c.Check(semver.MustParse("2.0.0")))
	c, err = cfg.References[1].Constraint()
	require.NoError(t, err)
	assert.Nil(t, c)

	d, err := cfg.Debug.Debugger(func(debug.Capture) {})
	require.NoError(t, err)
	assert.Equal(t, debug.Statements, d.Mode)
	assert.Equal(t, []debug.Breakpoint{{Line: 3}, {Line: 4, Columns: &debug.ColumnRange{From: 2, To: 5}}},
		d.Breakpoints)

	opts := cfg.Emit.Options()
	assert.Equal(t, "calc", opts.Package)
	assert.Equal(t, "Adder", opts.Type)
	assert.Equal(t, "Sum", opts.Func)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse("xs.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)

	d, err := cfg.Debug.Debugger(func(debug.Capture) {})
	require.NoError(t, err)
	assert.Nil(t, d)
}

var invalidConfigs = []struct {
	name, content string
}{
	{"unknown key", "require-terminaton: true"},
	{"wrong type", "require-termination: yes please"},
	{"bad mode", "debug: {mode: sometimes}"},
	{"bad breakpoint", `debug: {breakpoints: ["0"]}`},
	{"bad constraint", "references: [{name: XS.Text, version: '>>1'}]"},
	{"bad package name", "references: [{name: 'XS Text'}]"},
	{"missing name", "references: [{version: ^1.0}]"},
	{"bad identifier", "emit: {func: 1up}"},
	{"not yaml", "debug: [unclosed"},
	{"not a mapping", "- a\n- b"},
}

func TestParse_Invalid(t *testing.T) {
	for _, test := range invalidConfigs {
		t.Run(test.name, func(t *testing.T) {
			_, err := config.Parse("xs.yaml", []byte(test.content))
			assert.Error(t, err)
		})
	}
}

func TestParseReference(t *testing.T) {
	r, err := config.ParseReference("XS.Text, ^1.2")
	require.NoError(t, err)
	assert.Equal(t, config.Reference{Name: "XS.Text", Version: "^1.2"}, r)

	r, err = config.ParseReference("XS.Json")
	require.NoError(t, err)
	assert.Equal(t, config.Reference{Name: "XS.Json"}, r)

	_, err = config.ParseReference("XS.Text, not a version")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	dir := testutil.InTempDir(t)
	testutil.ApplyDir(map[string]string{
		"proj/xs.yaml":      "require-termination: true\n",
		"proj/src/a/b.xs":   "1",
		"other/placeholder": "",
	})

	cfg, path, err := config.Find(filepath.Join(dir, "proj", "src", "a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "proj", "xs.yaml"), path)
	assert.True(t, cfg.RequireTermination)

	cfg, path, err = config.Find(filepath.Join(dir, "other"))
	require.NoError(t, err)
	assert.Equal(t, "", path)
	assert.False(t, cfg.RequireTermination)
}

func TestFind_Invalid(t *testing.T) {
	dir := testutil.InTempDir(t)
	testutil.ApplyDir(map[string]string{"xs.yaml": "nope: 1\n"})
	_, _, err := config.Find(dir)
	assert.Error(t, err)
}
