//go:build darwin || freebsd || linux

package native

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

// DynamicLibrary is a scanner library loaded at runtime. The symbol
// handles are resolved once in Open and live as long as the value.
type DynamicLibrary struct {
	path   string
	handle uintptr

	scanDevices func(out *uintptr) int32
	freeDevices func(addr uintptr)

	closeOnce sync.Once
}

// Open loads the scanner library at path. An empty path searches the
// default locations (see FindLibrary).
func Open(path string) (*DynamicLibrary, error) {
	if path == "" {
		found, err := FindLibrary()
		if err != nil {
			return nil, err
		}
		path = found
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	lib := &DynamicLibrary{path: path, handle: handle}
	if err := lib.resolve(); err != nil {
		purego.Dlclose(handle)
		return nil, err
	}

	return lib, nil
}

func (l *DynamicLibrary) resolve() error {
	scan, err := purego.Dlsym(l.handle, SymbolScanDevices)
	if err != nil {
		return fmt.Errorf("resolve %s in %s: %w", SymbolScanDevices, l.path, err)
	}
	free, err := purego.Dlsym(l.handle, SymbolFreeDevices)
	if err != nil {
		return fmt.Errorf("resolve %s in %s: %w", SymbolFreeDevices, l.path, err)
	}

	purego.RegisterFunc(&l.scanDevices, scan)
	purego.RegisterFunc(&l.freeDevices, free)
	return nil
}

// Path is the file the library was loaded from.
func (l *DynamicLibrary) Path() string {
	return l.path
}

func (l *DynamicLibrary) Scan(out *uintptr) int32 {
	var result uintptr
	status := l.scanDevices(&result)
	runtime.KeepAlive(&result)
	if status == 0 {
		*out = result
	}
	return status
}

func (l *DynamicLibrary) Release(addr uintptr) {
	l.freeDevices(addr)
}

func (l *DynamicLibrary) Memory() Memory {
	return Process
}

// Close unloads the library. Trees still outstanding become invalid.
func (l *DynamicLibrary) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = purego.Dlclose(l.handle)
	})
	return err
}
