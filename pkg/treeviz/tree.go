package treeviz

import (
	"context"

	"github.com/samskiter/micropython-stubber/pkg/classify"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

// Node is one member in the tree.
type Node struct {
	ID       string // qualified name, unique within the tree
	Name     string
	Kind     classify.Kind
	TypeName string
	Repr     string
	Children []*Node

	// Truncated marks a class that was not expanded because of the
	// nesting cap.
	Truncated bool

	// Errors counts members that could not be read.
	Errors int
}

// Tree is the member tree of one object.
type Tree struct {
	Root *Node
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*Node, int) { n++ })
	return n
}

// Walk visits every node depth first.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if t.Root != nil {
		walk(t.Root, 0)
	}
}

// Build classifies obj and expands classes down to maxDepth nesting
// levels, like the emitter does. A maxDepth of zero expands only the root.
func Build(ctx context.Context, c *classify.Classifier, obj object.Object, name string, maxDepth int) (*Tree, error) {
	root := &Node{
		ID:       name,
		Name:     name,
		Kind:     classify.KindModule,
		TypeName: classify.TypeName(obj.TypeText()),
		Repr:     obj.Repr(),
	}
	if err := expand(ctx, c, root, obj, 0, maxDepth); err != nil {
		return nil, err
	}
	return &Tree{Root: root}, nil
}

func expand(ctx context.Context, c *classify.Classifier, n *Node, obj object.Object, depth, maxDepth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := c.Classify(ctx, obj)
	if err != nil {
		return err
	}
	n.Errors = len(res.Errors)

	for _, rec := range res.Records {
		child := &Node{
			ID:       n.ID + "." + rec.Name,
			Name:     rec.Name,
			Kind:     rec.Kind,
			TypeName: rec.TypeName,
			Repr:     rec.Repr,
		}
		n.Children = append(n.Children, child)
		if rec.Kind != classify.KindClass {
			continue
		}
		if depth >= maxDepth {
			child.Truncated = true
			continue
		}
		if err := expand(ctx, c, child, rec.Value, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
