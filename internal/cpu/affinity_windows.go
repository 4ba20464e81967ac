//go:build windows

package cpu

import (
	"fmt"
	"math/bits"
	"syscall"
	"unsafe"
)

var (
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask  = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread       = kernel32.NewProc("GetCurrentThread")
	getProcessAffinityMask = kernel32.NewProc("GetProcessAffinityMask")
	getCurrentProcess      = kernel32.NewProc("GetCurrentProcess")
)

// pin restricts the calling OS thread to a single CPU of the current
// processor group. The caller must already hold runtime.LockOSThread.
func pin(cpuID int) error {
	if cpuID < 0 || cpuID >= bits.UintSize {
		return fmt.Errorf("cpu %d is outside the processor group", cpuID)
	}

	handle, _, _ := getCurrentThread.Call()
	mask := uintptr(1) << cpuID

	// A zero return is the previous mask only on failure.
	prev, _, err := setThreadAffinityMask.Call(handle, mask)
	if prev == 0 {
		return err
	}
	return nil
}

// Pinned reports the CPUs the process may run on. Windows has no call to
// read a single thread's mask back.
func Pinned() ([]int, error) {
	var procMask, sysMask uintptr

	proc, _, _ := getCurrentProcess.Call()
	ok, _, err := getProcessAffinityMask.Call(
		proc,
		uintptr(unsafe.Pointer(&procMask)),
		uintptr(unsafe.Pointer(&sysMask)),
	)
	if ok == 0 {
		return nil, err
	}

	cpus := make([]int, 0, bits.OnesCount(uint(procMask)))
	for i := range bits.UintSize {
		if procMask&(uintptr(1)<<i) != 0 {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
