package memguard

import (
	"runtime"
	"runtime/debug"

	"github.com/shirou/gopsutil/v3/mem"
)

// HostHeap is the heap of the stubber process itself. Collect runs the Go
// collector and returns memory to the OS. MemFree reports system available
// memory, falling back to the unused part of the Go heap.
type HostHeap struct{}

// Collect implements object.Heap.
func (HostHeap) Collect() {
	runtime.GC()
	debug.FreeOSMemory()
}

// MemFree implements object.Heap.
func (HostHeap) MemFree() int64 {
	if vm, err := mem.VirtualMemory(); err == nil {
		return int64(vm.Available)
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapSys - ms.HeapInuse)
}
