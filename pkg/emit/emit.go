// Package emit renders runtime objects as stub source.
//
// The [Emitter] walks one object at a time: it asks the classifier for the
// ordered members and writes one declaration per member, recursing into
// class bodies until the configured nesting cap. Classes beyond the cap are
// written as opaque references, which bounds recursion even for cyclic
// graphs such as a class that contains itself.
//
// Output for a module with a function, a constant and a class:
//
//	FREQ = 80 # type: int
//	def sleep(*args, **kwargs) -> Incomplete:
//	    ...
//
//	class Pin():
//	    IN = 1 # type: int
//	    def value(self, *args, **kwargs) -> Incomplete:
//	        ...
//
//	    def __init__(self, *argv, **kwargs) -> None:
//	        ...
package emit

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/samskiter/micropython-stubber/pkg/classify"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/memguard"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

// DefaultMaxClassLevel is the default class nesting cap.
const DefaultMaxClassLevel = 2

// IndentUnit is added per class level.
const IndentUnit = "    "

// Context is the state of one recursion frame.
type Context struct {
	Indent        string
	Depth         int    // class nesting, 0 at module level
	QualifiedName string // dotted path, for diagnostics
}

// Root returns the context for a module body.
func Root(module string) Context {
	return Context{QualifiedName: module}
}

// Nested returns the context for the body of class name.
func (c Context) Nested(name string) Context {
	return Context{
		Indent:        c.Indent + IndentUnit,
		Depth:         c.Depth + 1,
		QualifiedName: c.QualifiedName + "." + name,
	}
}

// reserved are structural names never written as members.
var reserved = map[string]bool{
	"classmethod":   true,
	"staticmethod":  true,
	"BaseException": true,
	"Exception":     true,
}

var builtinExceptions = map[string]bool{
	"KeyboardInterrupt": true,
	"StopIteration":     true,
	"SystemExit":        true,
}

// Stats counts the declarations written for one module.
type Stats struct {
	Classes    int
	Exceptions int
	Functions  int
	Values     int
	Opaque     int
	Skipped    int
	Errors     int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Classes += o.Classes
	s.Exceptions += o.Exceptions
	s.Functions += o.Functions
	s.Values += o.Values
	s.Opaque += o.Opaque
	s.Skipped += o.Skipped
	s.Errors += o.Errors
}

// Emitter writes stub source for runtime objects.
type Emitter struct {
	Classifier    *classify.Classifier
	Guard         *memguard.Guard
	Logger        *log.Logger
	MaxClassLevel int
	Denylist      map[string]bool // qualified names that must not be introspected
}

// New creates an emitter with the default nesting cap.
func New(c *classify.Classifier, guard *memguard.Guard, logger *log.Logger) *Emitter {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = classify.New(guard, logger)
	}
	return &Emitter{
		Classifier:    c,
		Guard:         guard,
		Logger:        logger,
		MaxClassLevel: DefaultMaxClassLevel,
		Denylist:      make(map[string]bool),
	}
}

// Deny marks qualified names whose introspection is known to crash or hang.
func (e *Emitter) Deny(names ...string) {
	for _, n := range names {
		e.Denylist[n] = true
	}
}

// DeniedNames returns the denied qualified names in sorted order.
func (e *Emitter) DeniedNames() []string {
	names := make([]string, 0, len(e.Denylist))
	for n := range e.Denylist {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// EmitModule writes the body of a module stub.
func (e *Emitter) EmitModule(ctx context.Context, w io.Writer, obj object.Object, name string) (Stats, error) {
	var st Stats
	err := e.emit(ctx, &errWriter{w: w}, obj, Root(name), &st)
	return st, err
}

// Emit writes the stub for the members of obj at the given context.
// It returns an OUTPUT_IO error when w fails and a restart error when the
// heap was exhausted. Unreadable members are logged and skipped.
func (e *Emitter) Emit(ctx context.Context, w io.Writer, obj object.Object, qualifiedName string, ec Context) error {
	ec.QualifiedName = qualifiedName
	return e.emit(ctx, &errWriter{w: w}, obj, ec, &Stats{})
}

func (e *Emitter) emit(ctx context.Context, w *errWriter, obj object.Object, ec Context, st *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Denylist[ec.QualifiedName] {
		e.Logger.Warn("skipping problematic object", "name", ec.QualifiedName)
		return nil
	}

	res, err := e.Classifier.Classify(ctx, obj)
	if err != nil {
		return err
	}
	for _, me := range res.Errors {
		e.Logger.Warn(me.Error())
	}
	st.Errors += len(res.Errors)

	for _, rec := range res.Records {
		if err := e.member(ctx, w, rec, ec, st); err != nil {
			return err
		}
		if w.err != nil {
			return errors.Wrap(errors.ErrCodeOutputIO, w.err, "write %s.%s", ec.QualifiedName, rec.Name)
		}
	}
	return nil
}

func (e *Emitter) member(ctx context.Context, w *errWriter, rec classify.MemberRecord, ec Context, st *Stats) error {
	ind := ec.Indent
	if reserved[rec.Name] {
		return nil
	}
	if err := errors.ValidateIdentifier(rec.Name); err != nil {
		e.Logger.Warn("invalid name", "name", rec.Name, "in", ec.QualifiedName)
		st.Skipped++
		return nil
	}

	switch {
	case rec.Kind == classify.KindClass && ec.Depth < e.maxClassLevel():
		return e.class(ctx, w, rec, ec, st)

	case rec.Kind == classify.KindCallable:
		st.Functions++
		if rec.Binding == classify.BindingClassMethod {
			w.printf("%s@classmethod\n", ind)
			w.printf("%sdef %s(cls, *args, **kwargs) -> Incomplete:\n", ind, rec.Name)
		} else {
			self := ""
			if ec.Depth > 0 {
				self = "self, "
			}
			w.printf("%sdef %s(%s*args, **kwargs) -> Incomplete:\n", ind, rec.Name, self)
		}
		w.printf("%s    ...\n\n", ind)

	case rec.Kind == classify.KindModule:
		// submodules are stubbed on their own

	case rec.Kind == classify.KindPrimitive:
		st.Values++
		w.printf("%s%s = %s # type: %s\n", ind, rec.Name, rec.Repr, rec.TypeName)

	case rec.Kind == classify.KindContainer:
		st.Values++
		w.printf("%s%s = %s # type: %s\n", ind, rec.Name, emptyLiteral(rec.TypeName), rec.TypeName)

	case strings.HasPrefix(rec.TypeText, "<class '"):
		st.Opaque++
		t := rec.TypeName
		if t != "object" && t != "set" && t != "frozenset" {
			t = "Incomplete"
		}
		w.printf("%s%s : %s ## %s = %s\n", ind, rec.Name, t, rec.TypeText, rec.Repr)

	default:
		st.Opaque++
		w.printf("# all other, type = '%s'\n", rec.TypeText)
		w.printf("%s%s # type: Incomplete\n", ind, rec.Name)
	}
	return nil
}

func (e *Emitter) class(ctx context.Context, w *errWriter, rec classify.MemberRecord, ec Context, st *Stats) error {
	ind := ec.Indent
	if isException(rec.Name) {
		st.Exceptions++
		w.printf("\n%sclass %s(Exception):\n", ind, rec.Name)
		w.printf("%s    ...\n", ind)
		return nil
	}

	st.Classes++
	e.Logger.Debug("class", "name", ec.QualifiedName+"."+rec.Name, "depth", ec.Depth)
	w.printf("\n%sclass %s():\n", ind, rec.Name)
	if w.err != nil {
		return nil
	}
	if err := e.emit(ctx, w, rec.Value, ec.Nested(rec.Name), st); err != nil {
		return err
	}
	w.printf("%s    def __init__(self, *argv, **kwargs) -> None:\n", ind)
	w.printf("%s        ...\n\n", ind)
	e.Guard.Checkpoint(ctx, "class")
	return nil
}

func (e *Emitter) maxClassLevel() int {
	if e.MaxClassLevel <= 0 {
		return DefaultMaxClassLevel
	}
	return e.MaxClassLevel
}

func isException(name string) bool {
	return strings.HasSuffix(name, "Exception") ||
		strings.HasSuffix(name, "Error") ||
		builtinExceptions[name]
}

func emptyLiteral(typeName string) string {
	switch typeName {
	case "dict":
		return "{}"
	case "list":
		return "[]"
	default:
		return "()"
	}
}
