//go:build !darwin && !freebsd && !linux

package native

import "errors"

var errDynamicUnavailable = errors.New("dynamic loading of the scanner library is not supported on this platform")

// DynamicLibrary stub
type DynamicLibrary struct{}

// Open returns an error on platforms without dlopen
func Open(path string) (*DynamicLibrary, error) {
	return nil, errDynamicUnavailable
}

// Path returns empty string
func (l *DynamicLibrary) Path() string { return "" }

// Scan reports a critical failure
func (l *DynamicLibrary) Scan(out *uintptr) int32 { return -666 }

// Release is a no-op
func (l *DynamicLibrary) Release(addr uintptr) {}

// Memory returns the process memory reader
func (l *DynamicLibrary) Memory() Memory { return Process }

// Close is a no-op
func (l *DynamicLibrary) Close() error { return nil }
