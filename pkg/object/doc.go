// Package object defines the view of an embedded runtime that the stubber
// introspects.
//
// The stubber never talks to a device directly. Everything it learns comes
// from walking an object graph through a handful of small interfaces:
//
//   - [Object]: a live value with a member set, a type text and a repr
//   - [Runtime]: imports and unloads modules, reports os.uname()
//   - [Heap]: triggers a collection and reports free bytes
//   - [Resetter]: hard-resets the runtime after memory exhaustion
//
// Type text and repr follow the runtime's own spelling, for example
// "<class 'int'>" and "42", so classification works on the same strings a
// device would print.
//
// # In-memory Runtime
//
// [MemoryRuntime] is a complete runtime built from [Node] values. It is used
// by tests and by the snapshot loader, which turns a captured firmware dump
// into a graph of nodes:
//
//	rt := object.NewMemoryRuntime()
//	rt.Add("gc", object.Module("gc").
//	    Set("collect", object.Function("collect")).
//	    Set("threshold", object.Int(4096)))
//
//	mod, err := rt.Import("gc")
//
// Members may point back at their owners, so cyclic graphs such as a class
// containing itself are representable.
package object
