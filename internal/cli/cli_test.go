package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/config"
	"github.com/samskiter/micropython-stubber/pkg/driver"
	"github.com/samskiter/micropython-stubber/pkg/errors"
)

const testSnapshot = `{
  "uname": {"sysname": "esp32", "nodename": "esp32", "release": "1.19.1",
            "version": "v1.19.1 on 2022-06-18", "machine": "ESP32 module with ESP32"},
  "modules": {
    "sys": {"members": [
      {"name": "platform", "type": "<class 'str'>", "repr": "'esp32'"},
      {"name": "implementation", "type": "<class 'implementation'>", "repr": "(name='micropython')", "members": [
        {"name": "name", "type": "<class 'str'>", "repr": "'micropython'"},
        {"name": "version", "type": "<class 'tuple'>", "repr": "(1, 19, 1)"},
        {"name": "_machine", "type": "<class 'str'>", "repr": "'ESP32 module with ESP32'"},
        {"name": "_mpy", "type": "<class 'int'>", "repr": "10757"}
      ]}
    ]},
    "gc": {"members": [
      {"name": "collect", "type": "<class 'function'>", "repr": "<function collect>"}
    ]},
    "machine": {"members": [
      {"name": "Pin", "type": "<class 'type'>", "repr": "<class 'Pin'>", "members": [
        {"name": "IN", "type": "<class 'int'>", "repr": "1"}
      ]}
    ]}
  }
}`

const testStubDir = "stubs/micropython-v1_19_1-esp32-ESP32_module_with_ESP32"

func newTestCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.Config = &config.Config{}
	return c
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snapshot.json"), []byte(testSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRunCommand(t *testing.T) {
	dir := writeSnapshot(t)

	if err := execute(t, newTestCLI(), "run", "-p", dir, "-m", "gc", "-m", "machine"); err != nil {
		t.Fatalf("run: %v", err)
	}

	stub, err := os.ReadFile(filepath.Join(dir, testStubDir, "machine.py"))
	if err != nil {
		t.Fatalf("read stub: %v", err)
	}
	for _, want := range []string{
		"Module: 'machine' on micropython-v1.19.1-esp32-ESP32_module_with_ESP32",
		"\nclass Pin():\n    IN = 1 # type: int\n",
	} {
		if !strings.Contains(string(stub), want) {
			t.Errorf("stub missing %q:\n%s", want, stub)
		}
	}

	m, err := driver.ReadManifest(filepath.Join(dir, testStubDir, driver.DefaultManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(m.Modules) != 2 {
		t.Errorf("manifest has %d modules, want 2", len(m.Modules))
	}
	if m.Firmware.Port != "esp32" {
		t.Errorf("manifest port = %q, want esp32", m.Firmware.Port)
	}

	logData, err := os.ReadFile(filepath.Join(dir, driver.DefaultProgressFile))
	if err != nil {
		t.Fatalf("read progress log: %v", err)
	}
	if got := string(logData); got != "gc=succeeded\nmachine=succeeded\n" {
		t.Errorf("progress log = %q", got)
	}
}

func TestRunCommandFirmwareID(t *testing.T) {
	dir := writeSnapshot(t)
	if err := execute(t, newTestCLI(), "run", "-p", dir, "-m", "gc", "--firmware-id", "Custom-FW"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stubs", "custom-fw", "gc.py")); err != nil {
		t.Errorf("stub not written under explicit firmware id: %v", err)
	}
}

func TestRunCommandUsesConfig(t *testing.T) {
	dir := writeSnapshot(t)
	c := newTestCLI()
	c.Config = &config.Config{
		Stubber: config.Stubber{Path: dir},
		Modules: config.Modules{List: []string{"gc"}, Excluded: []string{"machine"}},
	}
	if err := execute(t, c, "run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, testStubDir, "gc.py")); err != nil {
		t.Errorf("gc stub missing: %v", err)
	}
}

func TestRunCommandMissingSnapshot(t *testing.T) {
	err := execute(t, newTestCLI(), "run", "-p", t.TempDir(), "-m", "gc")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRootAutoRunDisabled(t *testing.T) {
	wd, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, noAutoFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := execute(t, newTestCLI()); err != nil {
		t.Errorf("root with %s should do nothing, got %v", noAutoFile, err)
	}
	if _, err := os.Stat(filepath.Join(dir, driver.DefaultProgressFile)); !os.IsNotExist(err) {
		t.Error("no progress log should be written")
	}
}

func TestSnapshotConvertCommand(t *testing.T) {
	dir := writeSnapshot(t)
	out := filepath.Join(dir, "snapshot.cbor")
	if err := execute(t, newTestCLI(), "snapshot", "convert", filepath.Join(dir, "snapshot.json"), out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("converted snapshot missing: %v", err)
	}
	if err := execute(t, newTestCLI(), "snapshot", "info", out); err != nil {
		t.Errorf("info on converted snapshot: %v", err)
	}
}

func TestGraphCommandDOT(t *testing.T) {
	dir := writeSnapshot(t)
	out := filepath.Join(dir, "machine.dot")
	if err := execute(t, newTestCLI(), "graph", "machine", "-p", dir, "-o", out); err != nil {
		t.Fatalf("graph: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"machine" -> "machine.Pin";`) {
		t.Errorf("unexpected DOT:\n%s", data)
	}
}

func TestProbeCommandJSON(t *testing.T) {
	dir := writeSnapshot(t)
	stdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	runErr := execute(t, newTestCLI(), "probe", "-p", dir, "--json")
	w.Close()
	os.Stdout = stdout
	if runErr != nil {
		t.Fatalf("probe: %v", runErr)
	}

	var prof map[string]string
	if err := json.NewDecoder(r).Decode(&prof); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if prof["family"] != "micropython" || prof["mpy"] != "v5.2" {
		t.Errorf("profile = %v", prof)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{&errors.RestartError{Stage: "import"}, ExitRestart},
		{fmt.Errorf("run: %w", &errors.RestartError{Stage: "emit"}), ExitRestart},
		{context.Canceled, ExitCanceled},
		{errors.New(errors.ErrCodeInvalidInput, "bad"), ExitError},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRunOptionsClassLevel(t *testing.T) {
	tests := []struct {
		args       []string
		configured int
		want       int
	}{
		{nil, 3, 3},
		{nil, 0, 0},
		{[]string{"--max-class-level", "1"}, 3, 1},
		{[]string{"--max-class-level=4"}, 2, 4},
	}
	for _, tt := range tests {
		var o runOptions
		cmd := &cobra.Command{Use: "run"}
		o.bind(cmd)
		if err := cmd.ParseFlags(tt.args); err != nil {
			t.Fatalf("ParseFlags(%v): %v", tt.args, err)
		}
		o.parsed(cmd)
		if got := o.classLevel(tt.configured); got != tt.want {
			t.Errorf("classLevel(%d) with %v = %d, want %d", tt.configured, tt.args, got, tt.want)
		}
	}
}

func TestFormatFromOutput(t *testing.T) {
	tests := map[string]string{
		"":          "dot",
		"tree.dot":  "dot",
		"tree.SVG":  "svg",
		"tree.pdf":  "pdf",
		"tree.png":  "png",
		"tree.json": "dot",
	}
	for in, want := range tests {
		if got := formatFromOutput(in); got != want {
			t.Errorf("formatFromOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModuleListModel(t *testing.T) {
	var m tea.Model = NewModuleListModel([]string{"gc", "machine", "network"})

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'j'}},
		{Type: tea.KeyRunes, Runes: []rune{'x'}},
		{Type: tea.KeyEnter},
	}
	for _, k := range keys {
		m, _ = m.Update(k)
	}

	got := m.(ModuleListModel)
	if !got.Confirmed {
		t.Fatal("enter should confirm")
	}
	if sel := strings.Join(got.Selected(), ","); sel != "gc,network" {
		t.Errorf("Selected() = %q, want gc,network", sel)
	}
	if !strings.Contains(got.View(), "2 selected") {
		t.Errorf("View() should show the selection count:\n%s", got.View())
	}
}

func TestModuleListModelToggleAll(t *testing.T) {
	var m tea.Model = NewModuleListModel([]string{"a", "b"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if sel := m.(ModuleListModel).Selected(); len(sel) != 0 {
		t.Errorf("toggle all from all-checked should clear, got %v", sel)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if sel := m.(ModuleListModel).Selected(); len(sel) != 2 {
		t.Errorf("toggle all should check every module, got %v", sel)
	}
}
