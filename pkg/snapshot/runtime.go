package snapshot

import (
	"github.com/samskiter/micropython-stubber/pkg/cache"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

type pendingRef struct {
	owner *object.Node
	name  string
	ref   string
	path  string
}

type builder struct {
	paths map[string]*object.Node
	refs  []pendingRef
}

// Runtime builds an in-memory runtime serving the snapshot's modules.
func (d *Document) Runtime() (*object.MemoryRuntime, error) {
	rt := object.NewMemoryRuntime()
	if d.Heap.Size > 0 {
		rt.HeapSize = d.Heap.Size
		if d.Heap.Free > 0 {
			rt.Reserved = d.Heap.Size - d.Heap.Free
		}
	}
	if d.Uname != nil {
		rt.SetUname(*d.Uname)
	}

	b := &builder{paths: make(map[string]*object.Node)}
	for _, name := range d.ModuleNames() {
		n := d.Modules[name]
		mod := b.build(n, name, object.Module(name))
		digest, err := Digest(n)
		if err != nil {
			return nil, err
		}
		mod.SetDigest(digest)
		rt.Add(name, mod)
	}
	if err := b.resolve(); err != nil {
		return nil, err
	}
	return rt, nil
}

// build copies n into the object graph rooted at path. into supplies the
// defaults for an empty type or repr.
func (b *builder) build(n *Node, path string, into *object.Node) *object.Node {
	typ, repr := n.Type, n.Repr
	if typ == "" {
		typ = into.TypeText()
	}
	if repr == "" {
		repr = into.Repr()
	}
	obj := object.Raw(typ, repr)
	b.paths[path] = obj

	for i := range n.Members {
		m := &n.Members[i]
		p := path + "." + m.Name
		switch {
		case m.Error == ErrorMemory:
			obj.Fail(m.Name, errors.New(errors.ErrCodeOutOfMemory, "memory allocation failed"))
		case m.Error != "":
			obj.Fail(m.Name, errors.New(errors.ErrCodeAttribute, "'%s' object has no attribute '%s'", object.TypeName(typ), m.Name))
		case m.Ref != "":
			// placeholder keeps the member's position
			obj.Set(m.Name, nil)
			b.refs = append(b.refs, pendingRef{owner: obj, name: m.Name, ref: m.Ref, path: p})
		default:
			obj.Set(m.Name, b.build(&m.Node, p, object.None()))
		}
	}
	return obj
}

func (b *builder) resolve() error {
	for _, r := range b.refs {
		target, ok := b.paths[r.ref]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "%s: unresolved ref %q", r.path, r.ref)
		}
		r.owner.Set(r.name, target)
	}
	return nil
}

// Digest is the SHA-256 of the canonical CBOR encoding of n.
func Digest(n *Node) (string, error) {
	data, err := cborEncMode.Marshal(n)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "digest")
	}
	return cache.Hash(data), nil
}
