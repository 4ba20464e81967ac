// Package cpu binds worker goroutines to dedicated OS threads and, where the
// platform allows it, to a single CPU core.
package cpu

import "runtime"

// Bind locks the calling goroutine to its OS thread and pins that thread to
// one of the CPUs it is allowed to run on, chosen by CoreFor. The thread is
// never unlocked: when the goroutine exits the runtime destroys it, so a
// pinned mask never leaks to other goroutines. A pinning error still leaves
// the thread locked.
func Bind(workerID int) error {
	runtime.LockOSThread()

	allowed, err := Pinned()
	if err != nil {
		return err
	}
	return pin(CoreFor(workerID, allowed))
}

// CoreFor maps a worker id onto the allowed CPUs, spreading consecutive ids
// across the set. An empty set falls back to 0..NumCPU-1.
func CoreFor(workerID int, allowed []int) int {
	n := len(allowed)
	if n == 0 {
		n = runtime.NumCPU()
	}

	i := workerID % n
	if i < 0 {
		i = -i
	}
	if len(allowed) == 0 {
		return i
	}
	return allowed[i]
}
