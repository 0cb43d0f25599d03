// Package pkg provides the libraries of the MicroPython stub generator.
//
// # Overview
//
// The stubber introspects the modules of a MicroPython firmware and writes
// one Python stub file per module, so that editors and type checkers know
// which functions, classes and constants the board exposes. The pkg
// directory is organized into three areas:
//
//  1. Runtime access: [object] (object graph and runtime interfaces) and
//     [snapshot] (firmware dumps decoded into a runtime)
//  2. Stub generation: [classify], [emit], [memguard], [probe] and [driver]
//  3. Support: [cache], [config], [errors], [observability], [treeviz] and
//     [buildinfo]
//
// # Architecture
//
// The data flow of one run:
//
//	snapshot file (JSON, YAML or CBOR)
//	         ↓
//	    [snapshot] package (decode into an object.MemoryRuntime)
//	         ↓
//	    [probe] package (firmware profile and id)
//	         ↓
//	    [driver] package (worklist, progress log, one stub per module)
//	         ↓
//	    [emit] + [classify] packages (member tree to stub text)
//	         ↓
//	    stubs/{firmware}/*.py + modules.json
//
// The [memguard] package wraps every heavy step. When the heap runs out it
// resets the runtime and the driver stops; a repeated run resumes from the
// progress log.
//
// # Quick Start
//
//	doc, _ := snapshot.Load("snapshot.json")
//	rt, _ := doc.Runtime()
//
//	guard := memguard.New(rt, rt, logger)
//	em := emit.New(classify.New(guard, logger), guard, logger)
//	d := driver.New(rt, em, nil, nil, logger)
//
//	report, err := d.Run(ctx, []string{"gc", "machine"}, driver.Options{
//	    Root:    "out",
//	    Profile: probe.New(rt, logger).Probe(),
//	})
//
// [object]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/object
// [snapshot]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/snapshot
// [classify]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/classify
// [emit]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/emit
// [memguard]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/memguard
// [probe]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/probe
// [driver]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/driver
// [cache]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/cache
// [config]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/config
// [errors]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/errors
// [observability]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/observability
// [treeviz]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/treeviz
// [buildinfo]: https://pkg.go.dev/github.com/samskiter/micropython-stubber/pkg/buildinfo
package pkg
