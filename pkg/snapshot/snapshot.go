package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Member error kinds.
const (
	ErrorAttribute = "attribute"
	ErrorMemory    = "memory"
)

// Document is a decoded snapshot.
type Document struct {
	Uname   *object.Uname    `json:"uname,omitempty" yaml:"uname,omitempty"`
	Heap    Heap             `json:"heap" yaml:"heap"`
	Modules map[string]*Node `json:"modules" yaml:"modules"`
}

// Heap describes the device heap when the snapshot was taken.
type Heap struct {
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
	Free int64 `json:"free,omitempty" yaml:"free,omitempty"`
}

// Node is one object of the graph.
type Node struct {
	Type    string   `json:"type,omitempty" yaml:"type,omitempty"`
	Repr    string   `json:"repr,omitempty" yaml:"repr,omitempty"`
	Members []Member `json:"members,omitempty" yaml:"members,omitempty"`
}

// Member is a named attribute of a node.
type Member struct {
	Name  string `json:"name" yaml:"name"`
	Ref   string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Node  `yaml:",inline"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborEncMode = em
}

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown snapshot format %q (want json, yaml or cbor)", s)
}

// Load reads a snapshot file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open snapshot")
	}
	defer f.Close()
	doc, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return doc, nil
}

// Decode reads a snapshot from r and validates it.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&doc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown snapshot format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s snapshot", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes doc to w.
func Encode(w io.Writer, doc *Document, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(doc)
		if err == nil {
			err = enc.Close()
		}
	case FormatCBOR:
		err = cborEncMode.NewEncoder(w).Encode(doc)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown snapshot format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "encode %s snapshot", format)
	}
	return nil
}

// Convert re-encodes the snapshot at in into out, choosing formats by
// file extension.
func Convert(in, out string) error {
	doc, err := Load(in)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatFromPath(out)); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "write %s", out)
	}
	return nil
}

// Validate checks module names and member shapes. Refs are checked when
// the runtime is built.
func (d *Document) Validate() error {
	if len(d.Modules) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot has no modules")
	}
	if d.Heap.Size < 0 || d.Heap.Free < 0 || (d.Heap.Size > 0 && d.Heap.Free > d.Heap.Size) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid heap size %d / free %d", d.Heap.Size, d.Heap.Free)
	}
	for _, name := range d.ModuleNames() {
		if err := errors.ValidateModuleName(name); err != nil {
			return err
		}
		if d.Modules[name] == nil {
			return errors.New(errors.ErrCodeInvalidInput, "module %s is empty", name)
		}
		if err := validateNode(d.Modules[name], name); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, path string) error {
	for _, m := range n.Members {
		if m.Name == "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s: member without name", path)
		}
		p := path + "." + m.Name
		switch {
		case m.Error != "":
			if m.Error != ErrorAttribute && m.Error != ErrorMemory {
				return errors.New(errors.ErrCodeInvalidInput, "%s: unknown error kind %q", p, m.Error)
			}
		case m.Ref != "":
			if m.Type != "" || len(m.Members) > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%s: ref member must not carry node fields", p)
			}
		case m.Type == "":
			return errors.New(errors.ErrCodeInvalidInput, "%s: member has no type", p)
		default:
			if err := validateNode(&m.Node, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// ModuleNames returns the module names sorted.
func (d *Document) ModuleNames() []string {
	names := make([]string, 0, len(d.Modules))
	for name := range d.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
