//go:build !linux && !windows

package cpu

import "errors"

var errUnsupported = errors.New("cpu pinning is not supported on this platform")

// pin is a no-op here; the goroutine is still locked to its thread.
func pin(int) error {
	return errUnsupported
}

// Pinned is not available on this platform.
func Pinned() ([]int, error) {
	return nil, errUnsupported
}
