package object

import (
	"strconv"
	"strings"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// Node is an in-memory [Object]. Members keep insertion order.
type Node struct {
	typeText string
	repr     string
	digest   string
	names    []string
	members  map[string]member
}

type member struct {
	node *Node
	err  error
}

// New creates a node with the given type text and repr.
func New(typeText, repr string) *Node {
	return &Node{
		typeText: typeText,
		repr:     repr,
		members:  make(map[string]member),
	}
}

// Set adds or replaces a member. Replacing keeps the original position.
func (n *Node) Set(name string, v *Node) *Node {
	n.put(name, member{node: v})
	return n
}

// Fail adds a member whose read fails with err.
func (n *Node) Fail(name string, err error) *Node {
	n.put(name, member{err: err})
	return n
}

func (n *Node) put(name string, m member) {
	if _, ok := n.members[name]; !ok {
		n.names = append(n.names, name)
	}
	n.members[name] = m
}

// SetDigest records a content digest for the subtree rooted at n.
func (n *Node) SetDigest(d string) { n.digest = d }

// Digest implements [Digester].
func (n *Node) Digest() string { return n.digest }

// Dir implements [Object].
func (n *Node) Dir() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Attr implements [Object].
func (n *Node) Attr(name string) (Object, error) {
	m, ok := n.members[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeAttribute, "'%s' object has no attribute '%s'", TypeName(n.typeText), name)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.node == nil {
		return None(), nil
	}
	return m.node, nil
}

// TypeText implements [Object].
func (n *Node) TypeText() string { return n.typeText }

// Repr implements [Object].
func (n *Node) Repr() string { return n.repr }

// Child returns a direct member node, or nil.
func (n *Node) Child(name string) *Node {
	return n.members[name].node
}

// TypeName extracts "int" from "<class 'int'>".
func TypeName(typeText string) string {
	parts := strings.Split(typeText, "'")
	if len(parts) < 2 {
		return typeText
	}
	return parts[1]
}

func classText(name string) string { return "<class '" + name + "'>" }

// Module creates a module node.
func Module(name string) *Node { return New(classText("module"), "<module '"+name+"'>") }

// Class creates a class node. Its type is the metaclass "type".
func Class(name string) *Node { return New(classText("type"), classText(name)) }

// Function creates a plain function node.
func Function(name string) *Node { return New(classText("function"), "<function "+name+">") }

// BoundMethod creates a method bound to a class object.
func BoundMethod(name string) *Node {
	return New(classText("bound_method"), "<bound_method "+name+">")
}

// Closure creates a closure node.
func Closure(name string) *Node { return New(classText("closure"), "<closure "+name+">") }

// Int creates an int value.
func Int(v int64) *Node { return New(classText("int"), strconv.FormatInt(v, 10)) }

// Str creates a str value with a Python-style repr.
func Str(s string) *Node { return New(classText("str"), Quote(s)) }

// Float creates a float value.
func Float(f float64) *Node {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return New(classText("float"), s)
}

// Bool creates a bool value.
func Bool(b bool) *Node {
	if b {
		return New(classText("bool"), "True")
	}
	return New(classText("bool"), "False")
}

// Bytes creates a bytes value.
func Bytes(b []byte) *Node { return New(classText("bytes"), QuoteBytes(b)) }

// None creates the None singleton value.
func None() *Node { return New(classText("NoneType"), "None") }

// Dict creates a dict value with the given repr.
func Dict(repr string) *Node { return New(classText("dict"), repr) }

// List creates a list value with the given repr.
func List(repr string) *Node { return New(classText("list"), repr) }

// Tuple creates a tuple value with the given repr.
func Tuple(repr string) *Node { return New(classText("tuple"), repr) }

// Set creates a set value with the given repr.
func Set(repr string) *Node { return New(classText("set"), repr) }

// Opaque creates an instance of some other class.
func Opaque(typeName, repr string) *Node { return New(classText(typeName), repr) }

// Raw creates a node with an arbitrary type text.
func Raw(typeText, repr string) *Node { return New(typeText, repr) }
