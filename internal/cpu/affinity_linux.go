//go:build linux

package cpu

import "golang.org/x/sys/unix"

// pin restricts the calling OS thread to a single CPU.
// The caller must already hold runtime.LockOSThread.
func pin(cpuID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	return unix.SchedSetaffinity(0, &mask) // 0 = calling thread
}

// Pinned reports the CPUs the calling thread may run on. Under a restricted
// cpuset these need not start at 0.
func Pinned() ([]int, error) {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return nil, err
	}

	n := mask.Count()
	cpus := make([]int, 0, n)
	for i := 0; len(cpus) < n && i < len(mask)*64; i++ {
		if mask.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
