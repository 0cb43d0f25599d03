package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samskiter/micropython-stubber/pkg/classify"
	"github.com/samskiter/micropython-stubber/pkg/emit"
	"github.com/samskiter/micropython-stubber/pkg/errors"
)

const sample = `{
  "uname": {"sysname": "esp32", "nodename": "esp32", "release": "1.19.1",
            "version": "v1.19.1 on 2022-06-18", "machine": "ESP32 module with ESP32"},
  "heap": {"size": 100000, "free": 60000},
  "modules": {
    "gc": {
      "members": [
        {"name": "collect", "type": "<class 'function'>", "repr": "<function collect>"},
        {"name": "MAX", "type": "<class 'int'>", "repr": "4096"}
      ]
    },
    "machine": {
      "members": [
        {"name": "Pin", "type": "<class 'type'>", "repr": "<class 'Pin'>", "members": [
          {"name": "IN", "type": "<class 'int'>", "repr": "1"},
          {"name": "same", "ref": "machine.Pin"}
        ]},
        {"name": "flaky", "error": "attribute"},
        {"name": "huge", "error": "memory"},
        {"name": "gc", "ref": "gc"}
      ]
    }
  }
}`

func decodeSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(sample), FormatJSON)
	require.NoError(t, err)
	return doc
}

func TestDecodeAndBuild(t *testing.T) {
	doc := decodeSample(t)
	assert.Equal(t, []string{"gc", "machine"}, doc.ModuleNames())

	rt, err := doc.Runtime()
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rt.MemFree())

	u, err := rt.Uname()
	require.NoError(t, err)
	assert.Equal(t, "esp32", u.Sysname)

	gc, err := rt.Import("gc")
	require.NoError(t, err)
	assert.Equal(t, "<class 'module'>", gc.TypeText())
	assert.Equal(t, "<module 'gc'>", gc.Repr())
	assert.Equal(t, []string{"collect", "MAX"}, gc.Dir())

	machine, err := rt.Import("machine")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pin", "flaky", "huge", "gc"}, machine.Dir())

	pin, err := machine.Attr("Pin")
	require.NoError(t, err)
	same, err := pin.Attr("same")
	require.NoError(t, err)
	assert.Same(t, pin, same, "refs may form cycles")

	ref, err := machine.Attr("gc")
	require.NoError(t, err)
	assert.Same(t, gc, ref)

	_, err = machine.Attr("flaky")
	assert.True(t, errors.Is(err, errors.ErrCodeAttribute))
	_, err = machine.Attr("huge")
	assert.True(t, errors.Is(err, errors.ErrCodeOutOfMemory))
}

func TestDigest(t *testing.T) {
	doc := decodeSample(t)
	rt, err := doc.Runtime()
	require.NoError(t, err)

	gc := rt.Modules()["gc"]
	machine := rt.Modules()["machine"]
	assert.Len(t, gc.Digest(), 64)
	assert.NotEqual(t, gc.Digest(), machine.Digest())

	again, err := decodeSample(t).Runtime()
	require.NoError(t, err)
	assert.Equal(t, gc.Digest(), again.Modules()["gc"].Digest())

	doc.Modules["gc"].Members[1].Repr = "8192"
	changed, err := doc.Runtime()
	require.NoError(t, err)
	assert.NotEqual(t, gc.Digest(), changed.Modules()["gc"].Digest())
}

func TestFormats(t *testing.T) {
	doc := decodeSample(t)
	for _, f := range []Format{FormatJSON, FormatYAML, FormatCBOR} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, doc, f))
			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dump.json")
	out := filepath.Join(dir, "dump.yaml")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))

	require.NoError(t, Convert(in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "modules:\n")

	doc, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, decodeSample(t), doc)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a.yaml"))
	assert.Equal(t, FormatCBOR, FormatFromPath("a.cbor"))
	assert.Equal(t, FormatJSON, FormatFromPath("a.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("a"))

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no modules", `{"modules": {}}`},
		{"bad module name", `{"modules": {"../x": {}}}`},
		{"null module", `{"modules": {"m": null}}`},
		{"member without name", `{"modules": {"m": {"members": [{"type": "<class 'int'>"}]}}}`},
		{"member without type", `{"modules": {"m": {"members": [{"name": "x"}]}}}`},
		{"unknown error", `{"modules": {"m": {"members": [{"name": "x", "error": "boom"}]}}}`},
		{"ref with fields", `{"modules": {"m": {"members": [{"name": "x", "ref": "m", "type": "<class 'int'>"}]}}}`},
		{"free above size", `{"heap": {"size": 10, "free": 20}, "modules": {"m": {}}}`},
		{"malformed", `{"modules": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput) || errors.Is(err, errors.ErrCodeInvalidModule))
		})
	}
}

func TestUnresolvedRef(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"modules": {"m": {"members": [{"name": "x", "ref": "m.nope"}]}}}`), FormatJSON)
	require.NoError(t, err)
	_, err = doc.Runtime()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestEmitFromSnapshot(t *testing.T) {
	doc := decodeSample(t)
	members := doc.Modules["machine"].Members
	doc.Modules["machine"].Members = append(members[:2:2], members[3:]...)
	rt, err := doc.Runtime()
	require.NoError(t, err)
	machine, err := rt.Import("machine")
	require.NoError(t, err)

	logger := log.New(io.Discard)
	em := emit.New(classify.New(nil, logger), nil, logger)
	var buf bytes.Buffer
	st, err := em.EmitModule(context.Background(), &buf, machine, "machine")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\nclass Pin():\n")
	assert.Contains(t, out, "    IN = 1 # type: int\n")
	assert.Equal(t, 1, st.Errors)
}
