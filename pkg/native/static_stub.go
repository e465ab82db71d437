//go:build !cgo || !hwscan_static

package native

import "errors"

// ErrStaticUnavailable is returned when the binary was built without the
// linked scanner.
var ErrStaticUnavailable = errors.New("static scanner not available - build with CGO_ENABLED=1 -tags hwscan_static")

// StaticLibrary stub
type StaticLibrary struct{}

// OpenStatic returns an error when the scanner is not linked
func OpenStatic() (*StaticLibrary, error) {
	return nil, ErrStaticUnavailable
}

// Scan reports a critical failure
func (StaticLibrary) Scan(out *uintptr) int32 { return -666 }

// Release is a no-op
func (StaticLibrary) Release(addr uintptr) {}

// Memory returns the process memory reader
func (StaticLibrary) Memory() Memory { return Process }

// Close is a no-op
func (StaticLibrary) Close() error { return nil }
