package object

import (
	"sync"

	"github.com/samskiter/micropython-stubber/pkg/errors"
)

// DefaultHeapSize is the simulated heap of a [MemoryRuntime].
const DefaultHeapSize int64 = 128 * 1024

// MemoryRuntime is an in-process [Runtime] with a simulated heap.
//
// Each loaded module holds ImportCost bytes until it is unloaded or the
// runtime is reset. Reserved bytes are never released.
type MemoryRuntime struct {
	HeapSize   int64
	ImportCost int64
	Reserved   int64

	mu          sync.Mutex
	modules     map[string]*Node
	failures    map[string]error
	loaded      map[string]bool
	uname       *Uname
	collections int
	resets      int
}

// NewMemoryRuntime creates an empty runtime with [DefaultHeapSize].
func NewMemoryRuntime() *MemoryRuntime {
	return &MemoryRuntime{
		HeapSize: DefaultHeapSize,
		modules:  make(map[string]*Node),
		failures: make(map[string]error),
		loaded:   make(map[string]bool),
	}
}

// Add registers an importable module.
func (r *MemoryRuntime) Add(name string, mod *Node) *MemoryRuntime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = mod
	return r
}

// FailImport makes importing name fail with err.
func (r *MemoryRuntime) FailImport(name string, err error) *MemoryRuntime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = err
	return r
}

// SetUname sets the os.uname() result. Without it Uname fails.
func (r *MemoryRuntime) SetUname(u Uname) *MemoryRuntime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uname = &u
	return r
}

// Modules returns a copy of the importable modules.
func (r *MemoryRuntime) Modules() map[string]*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*Node, len(r.modules))
	for k, v := range r.modules {
		out[k] = v
	}
	return out
}

// Import implements [Runtime].
func (r *MemoryRuntime) Import(name string) (Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failures[name]; ok {
		return nil, err
	}
	mod, ok := r.modules[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeModuleNotFound, "no module named '%s'", name)
	}
	if !r.loaded[name] && r.freeLocked() < r.ImportCost {
		return nil, errors.New(errors.ErrCodeOutOfMemory, "memory allocation failed importing '%s'", name)
	}
	r.loaded[name] = true
	return mod, nil
}

// Unload implements [Runtime].
func (r *MemoryRuntime) Unload(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded[name] {
		return errors.New(errors.ErrCodeModuleNotFound, "module '%s' is not loaded", name)
	}
	delete(r.loaded, name)
	return nil
}

// Loaded reports whether name is in the module cache.
func (r *MemoryRuntime) Loaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded[name]
}

// Uname implements [Runtime].
func (r *MemoryRuntime) Uname() (Uname, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uname == nil {
		return Uname{}, errors.New(errors.ErrCodeAttribute, "'module' object has no attribute 'uname'")
	}
	return *r.uname, nil
}

// Collect implements [Heap].
func (r *MemoryRuntime) Collect() {
	r.mu.Lock()
	r.collections++
	r.mu.Unlock()
}

// MemFree implements [Heap].
func (r *MemoryRuntime) MemFree() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freeLocked()
}

func (r *MemoryRuntime) freeLocked() int64 {
	free := r.HeapSize - r.Reserved - r.ImportCost*int64(len(r.loaded))
	if free < 0 {
		return 0
	}
	return free
}

// Reset implements [Resetter]. The module cache is emptied.
func (r *MemoryRuntime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = make(map[string]bool)
	r.resets++
	return nil
}

// Collections returns how often Collect was called.
func (r *MemoryRuntime) Collections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collections
}

// Resets returns how often Reset was called.
func (r *MemoryRuntime) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}
