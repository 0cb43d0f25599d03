// Package classify enumerates and classifies the members of a runtime object.
//
// [Classifier.Classify] reads every visible member once, decides its [Kind]
// from the runtime type text, and returns the records ordered by tier
// (primitives, callables, classes, everything else) with enumeration order
// as the tie-break. A member whose read fails is reported in
// [Result.Errors] and never aborts the object. An out-of-memory read is
// handed to the memory guard, which resets the runtime; Classify then
// returns the guard's restart error.
package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/memguard"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

// DefaultTypeCacheSize bounds the memoised type texts.
const DefaultTypeCacheSize = 256

// MemberRecord is one classified member.
type MemberRecord struct {
	Name     string
	Repr     string
	TypeText string // repr(type(value))
	TypeName string // "int", "function", or a class name
	Kind     Kind
	Binding  Binding
	Order    int           // tier, see Kind.Tier
	Value    object.Object // only valid while the owning object is emitted
}

// MemberError is a member that could not be read.
type MemberError struct {
	Name  string
	Owner string // repr of the inspected object
	Err   error
}

func (e MemberError) Error() string {
	return fmt.Sprintf("couldn't get attribute '%s' from object '%s': %v", e.Name, e.Owner, e.Err)
}

// Stats counts what happened while classifying one object.
type Stats struct {
	Seen            int // names returned by Dir
	PrivateSkipped  int // "_" names that were not tracked
	InternalDropped int // "__" names removed after classification
	Duplicates      int
	Errors          int
}

// Result is the outcome of classifying one object.
type Result struct {
	Records []MemberRecord
	Errors  []MemberError
	Stats   Stats
}

// Classifier classifies object members.
type Classifier struct {
	Guard  *memguard.Guard
	Logger *log.Logger

	tracked map[string]bool
	types   *lru.Cache[string, typeInfo]
}

// New creates a classifier. If guard is nil, out-of-memory reads return a
// restart error without resetting anything.
func New(guard *memguard.Guard, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	types, err := lru.New[string, typeInfo](DefaultTypeCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &Classifier{
		Guard:   guard,
		Logger:  logger,
		tracked: make(map[string]bool),
		types:   types,
	}
}

// Track whitelists names that would otherwise be skipped as private,
// typically the modules on the worklist such as "_thread".
func (c *Classifier) Track(names ...string) {
	for _, n := range names {
		c.tracked[n] = true
	}
}

// Tracked reports whether name is whitelisted.
func (c *Classifier) Tracked(name string) bool {
	return c.tracked[name]
}

// TrackedNames returns the whitelisted names in sorted order.
func (c *Classifier) TrackedNames() []string {
	names := make([]string, 0, len(c.tracked))
	for n := range c.tracked {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Classify reads and classifies every visible member of obj.
func (c *Classifier) Classify(ctx context.Context, obj object.Object) (Result, error) {
	var res Result
	names := obj.Dir()
	res.Stats.Seen = len(names)
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if strings.HasPrefix(name, "_") && !c.tracked[name] {
			res.Stats.PrivateSkipped++
			continue
		}
		if seen[name] {
			res.Stats.Duplicates++
			continue
		}
		seen[name] = true

		c.Logger.Debug("get attribute", "name", name)
		val, err := obj.Attr(name)
		if err != nil {
			if errors.Is(err, errors.ErrCodeOutOfMemory) {
				return Result{}, c.Guard.Panic(ctx, "classify", err)
			}
			res.Errors = append(res.Errors, MemberError{Name: name, Owner: obj.Repr(), Err: err})
			res.Stats.Errors++
			continue
		}
		res.Records = append(res.Records, c.record(name, val))
	}

	kept := res.Records[:0]
	for _, r := range res.Records {
		if strings.HasPrefix(r.Name, "__") {
			res.Stats.InternalDropped++
			continue
		}
		kept = append(kept, r)
	}
	res.Records = kept

	sort.SliceStable(res.Records, func(i, j int) bool {
		return res.Records[i].Order < res.Records[j].Order
	})
	return res, nil
}

func (c *Classifier) record(name string, val object.Object) MemberRecord {
	typeText := val.TypeText()
	repr := val.Repr()
	info := c.lookup(typeText)

	rec := MemberRecord{
		Name:     name,
		Repr:     repr,
		TypeText: typeText,
		TypeName: info.Name,
		Kind:     info.Kind,
		Order:    info.Kind.Tier(),
		Value:    val,
	}
	if info.Kind == KindCallable && (info.Bound || strings.Contains(repr, "bound_method")) {
		rec.Binding = BindingClassMethod
	}
	return rec
}

func (c *Classifier) lookup(typeText string) typeInfo {
	if info, ok := c.types.Get(typeText); ok {
		return info
	}
	info := describe(typeText)
	c.types.Add(typeText, info)
	return info
}
