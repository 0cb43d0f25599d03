package object

// Object is a live runtime value.
type Object interface {
	// Dir returns the full reflective member set in enumeration order.
	Dir() []string

	// Attr reads a member. Failures carry ATTRIBUTE_ERROR or OUT_OF_MEMORY.
	Attr(name string) (Object, error)

	// TypeText is repr(type(v)), e.g. "<class 'function'>".
	TypeText() string

	// Repr is repr(v).
	Repr() string
}

// Digester is implemented by objects that know a content digest of their
// whole subtree. The driver uses it to key cached stub bodies.
type Digester interface {
	Digest() string
}

// Uname mirrors os.uname() on the device.
type Uname struct {
	Sysname  string `json:"sysname" yaml:"sysname"`
	Nodename string `json:"nodename" yaml:"nodename"`
	Release  string `json:"release" yaml:"release"`
	Version  string `json:"version" yaml:"version"`
	Machine  string `json:"machine" yaml:"machine"`
}

// Runtime is the module cache of an embedded interpreter.
type Runtime interface {
	// Import loads a module fresh. A missing module returns MODULE_NOT_FOUND.
	Import(name string) (Object, error)

	// Unload removes a module from the runtime's module cache.
	Unload(name string) error

	// Uname reports os.uname(). Ports without it return ATTRIBUTE_ERROR.
	Uname() (Uname, error)
}

// Heap is the garbage-collected heap of a runtime.
type Heap interface {
	Collect()
	MemFree() int64
}

// Resetter hard-resets a runtime.
type Resetter interface {
	Reset() error
}
