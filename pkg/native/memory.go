package native

import (
	"errors"
	"fmt"
	"unsafe"
)

// MaxStringLen bounds how far ReadCString scans for a terminator.
const MaxStringLen = 64 << 10

var (
	// ErrNullPointer is returned when a read targets address zero.
	ErrNullPointer = errors.New("native: null pointer dereference")
	// ErrUnterminated is returned when no NUL byte is found within MaxStringLen.
	ErrUnterminated = errors.New("native: no null terminator found")
)

// Memory reads scalar values out of the address space a result tree
// lives in. All reads copy; nothing returned aliases native memory.
type Memory interface {
	ReadU8(addr uintptr) (uint8, error)
	ReadI32(addr uintptr) (int32, error)
	ReadU32(addr uintptr) (uint32, error)
	ReadPtr(addr uintptr) (uintptr, error)
	// ReadCString returns a copy of the bytes before the first NUL.
	ReadCString(addr uintptr) ([]byte, error)
}

// Process reads the memory of the running process. It trusts the native
// layer: a wild pointer faults instead of returning an error.
var Process Memory = processMemory{}

type processMemory struct{}

// at converts an address handed over by C into a pointer without tripping
// the uintptr-to-Pointer vet check; the memory is not Go-managed.
func at(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}

func (processMemory) ReadU8(addr uintptr) (uint8, error) {
	if addr == 0 {
		return 0, ErrNullPointer
	}
	return *(*uint8)(at(addr)), nil
}

func (processMemory) ReadI32(addr uintptr) (int32, error) {
	if addr == 0 {
		return 0, ErrNullPointer
	}
	return *(*int32)(at(addr)), nil
}

func (processMemory) ReadU32(addr uintptr) (uint32, error) {
	if addr == 0 {
		return 0, ErrNullPointer
	}
	return *(*uint32)(at(addr)), nil
}

func (processMemory) ReadPtr(addr uintptr) (uintptr, error) {
	if addr == 0 {
		return 0, ErrNullPointer
	}
	return *(*uintptr)(at(addr)), nil
}

func (processMemory) ReadCString(addr uintptr) ([]byte, error) {
	if addr == 0 {
		return nil, ErrNullPointer
	}

	for n := 0; n < MaxStringLen; n++ {
		if *(*byte)(at(addr + uintptr(n))) == 0 {
			out := make([]byte, n)
			copy(out, unsafe.Slice((*byte)(at(addr)), n))
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w at 0x%x", ErrUnterminated, addr)
}
