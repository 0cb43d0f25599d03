package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleNaming(t *testing.T) {
	tests := []struct {
		name string
		dot  string
		path string
	}{
		{"gc", "gc", "gc"},
		{"umqtt/simple", "umqtt.simple", "umqtt/simple"},
		{"umqtt.simple", "umqtt.simple", "umqtt/simple"},
		{"a/b/c", "a.b.c", "a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := NormalizeModuleName(tt.name)
			assert.Equal(t, tt.dot, dot)
			assert.Equal(t, dot, NormalizeModuleName(dot))

			path := ModulePath(dot)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, path, ModulePath(path))
			assert.Equal(t, dot, NormalizeModuleName(path))
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "umqtt", "simple.py"), OutputPath("out", "umqtt.simple"))
	assert.Equal(t, filepath.Join("out", "gc.py"), OutputPath("out", "gc"))
}

func TestFlatID(t *testing.T) {
	assert.Equal(t, "micropython-v1_19_1-esp32-generic", FlatID("micropython-v1.19.1-esp32-generic"))
	assert.Equal(t, "a_b_c_d_e_f_g_h", FlatID("a b.c(d)e/f:g$h"))
	assert.Equal(t, filepath.Join("r", "stubs", "x-v1_0"), StubDir("r", "x-v1.0"))
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		value  string
		status Status
		file   string
		ok     bool
	}{
		{"succeeded", StatusSucceeded, "", true},
		{"failed-memory", StatusFailedMemory, "", true},
		{"skipped-excluded", StatusSkippedExcluded, "", true},
		{"ok", StatusSucceeded, "", true},
		{"failed", StatusFailedImport, "", true},
		{`{"module":"x","file":"x.py"}`, StatusSucceeded, "x.py", true},
		{"{broken", "", "", false},
		{"pending", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		status, file, ok := ParseStatus(tt.value)
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.status, status, tt.value)
		assert.Equal(t, tt.file, file, tt.value)
	}
	assert.True(t, StatusFailedOutput.Failed())
	assert.True(t, StatusSkippedProblematic.Skipped())
	assert.False(t, StatusPending.Terminal())
}

func TestProgressLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", DefaultProgressFile)

	pl, err := OpenProgressLog(path)
	require.NoError(t, err)
	assert.False(t, pl.Existed())
	require.NoError(t, pl.Append("a", StatusSucceeded))
	require.NoError(t, pl.Append("b", StatusFailedImport))
	require.NoError(t, pl.Append("a", StatusFailedOutput))
	require.NoError(t, pl.Close())

	pl, err = OpenProgressLog(path)
	require.NoError(t, err)
	defer pl.Close()
	assert.True(t, pl.Existed())
	assert.True(t, pl.Done("a"))
	assert.False(t, pl.Done("c"))

	status, ok := pl.Status("a")
	assert.True(t, ok)
	assert.Equal(t, StatusFailedOutput, status)

	entries := pl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Module)
	assert.Equal(t, "b", entries[1].Module)
}

func TestReadModuleList(t *testing.T) {
	mods, err := ReadModuleList(strings.NewReader("# comment\ngc\n\n  machine  \numqtt/simple\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"gc", "machine", "umqtt/simple"}, mods)
}

func TestLoadModuleList(t *testing.T) {
	empty := t.TempDir()
	withList := t.TempDir()
	writeFile(t, filepath.Join(withList, ModuleListFile), "gc\nsys\n")

	mods, source, err := LoadModuleList([]string{empty, withList})
	require.NoError(t, err)
	assert.Equal(t, []string{"gc", "sys"}, mods)
	assert.Equal(t, filepath.Join(withList, ModuleListFile), source)

	mods, source, err = LoadModuleList([]string{empty})
	require.NoError(t, err)
	assert.Equal(t, DefaultModules, mods)
	assert.Empty(t, source)
}

func TestNewWorklist(t *testing.T) {
	items := NewWorklist([]string{"a", " b ", "a", "", "c"})
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[1].Module)
	for _, it := range items {
		assert.Equal(t, StatusPending, it.Status)
	}
}

func TestNewWorklistNormalizedDuplicates(t *testing.T) {
	items := NewWorklist([]string{"umqtt/simple", "gc", "umqtt.simple"})
	require.Len(t, items, 2)
	assert.Equal(t, "umqtt/simple", items[0].Module)
	assert.Equal(t, "gc", items[1].Module)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
