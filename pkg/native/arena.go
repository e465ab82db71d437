package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// arenaBase keeps every arena address well away from zero so null stays
// distinguishable from the first allocation.
const arenaBase uintptr = 0x10000

// ErrUseAfterRelease is returned for reads of a retired region.
var ErrUseAfterRelease = errors.New("native: read of released memory")

type span struct {
	start, end uintptr
}

func (s span) contains(addr, n uintptr) bool {
	return addr < s.end && addr+n > s.start
}

// Arena is a synthetic native heap. It lays values out exactly as the C
// side would (host byte order, the Layout's pointer size) so the
// marshaller can be driven without a real scanner library. Reads are
// bounds checked and retired regions refuse reads.
type Arena struct {
	mu      sync.RWMutex
	base    uintptr
	buf     []byte
	retired []span
	ptrSize uintptr
	order   binary.ByteOrder
}

// NewArena returns an empty arena for the given layout.
func NewArena(l *Layout) *Arena {
	return &Arena{
		base:    arenaBase,
		ptrSize: l.PtrSize,
		order:   binary.NativeEndian,
	}
}

// Mark returns the address the next allocation will start at.
func (a *Arena) Mark() uintptr {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.base + uintptr(len(a.buf))
}

// Alloc reserves size zeroed bytes aligned to align and returns their address.
func (a *Arena) Alloc(size, align uintptr) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if align == 0 {
		align = 1
	}
	start := alignTo(uintptr(len(a.buf)), align)
	grow := int(start+size) - len(a.buf)
	a.buf = append(a.buf, make([]byte, grow)...)
	return a.base + start
}

// Retire marks [start, end) as released.
func (a *Arena) Retire(start, end uintptr) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retired = append(a.retired, span{start, end})
}

// Reset drops every allocation. Addresses are never handed out twice, so
// reads of anything allocated before the reset fail with
// ErrUseAfterRelease.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.base = alignTo(a.base+uintptr(len(a.buf)), 16)
	a.buf = nil
	a.retired = nil
}

// Len is the number of bytes allocated so far.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buf)
}

// window must be called with a.mu held.
func (a *Arena) window(addr, n uintptr) ([]byte, error) {
	if addr == 0 {
		return nil, ErrNullPointer
	}
	if addr >= arenaBase && addr < a.base {
		return nil, fmt.Errorf("%w: addr=0x%x", ErrUseAfterRelease, addr)
	}
	if addr < a.base || addr-a.base+n > uintptr(len(a.buf)) {
		return nil, fmt.Errorf("native: arena access out of bounds: addr=0x%x, length=%d", addr, n)
	}
	for _, s := range a.retired {
		if s.contains(addr, n) {
			return nil, fmt.Errorf("%w: addr=0x%x", ErrUseAfterRelease, addr)
		}
	}
	off := addr - a.base
	return a.buf[off : off+n], nil
}

func (a *Arena) put(addr uintptr, b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, err := a.window(addr, uintptr(len(b)))
	if err != nil {
		panic(err)
	}
	copy(w, b)
}

// PutU8 stores v at addr. Writes outside allocations panic.
func (a *Arena) PutU8(addr uintptr, v uint8) {
	a.put(addr, []byte{v})
}

// PutI32 stores v at addr.
func (a *Arena) PutI32(addr uintptr, v int32) {
	a.PutU32(addr, uint32(v))
}

// PutU32 stores v at addr.
func (a *Arena) PutU32(addr uintptr, v uint32) {
	b := make([]byte, 4)
	a.order.PutUint32(b, v)
	a.put(addr, b)
}

// PutPtr stores a pointer-sized value at addr.
func (a *Arena) PutPtr(addr, v uintptr) {
	b := make([]byte, a.ptrSize)
	if a.ptrSize == 4 {
		a.order.PutUint32(b, uint32(v))
	} else {
		a.order.PutUint64(b, uint64(v))
	}
	a.put(addr, b)
}

// PutCString copies s plus a terminator into the arena and returns its address.
func (a *Arena) PutCString(s string) uintptr {
	addr := a.Alloc(uintptr(len(s))+1, 1)
	a.put(addr, append([]byte(s), 0))
	return addr
}

func (a *Arena) ReadU8(addr uintptr) (uint8, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w, err := a.window(addr, 1)
	if err != nil {
		return 0, err
	}
	return w[0], nil
}

func (a *Arena) ReadI32(addr uintptr) (int32, error) {
	v, err := a.ReadU32(addr)
	return int32(v), err
}

func (a *Arena) ReadU32(addr uintptr) (uint32, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w, err := a.window(addr, 4)
	if err != nil {
		return 0, err
	}
	return a.order.Uint32(w), nil
}

func (a *Arena) ReadPtr(addr uintptr) (uintptr, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w, err := a.window(addr, a.ptrSize)
	if err != nil {
		return 0, err
	}
	if a.ptrSize == 4 {
		return uintptr(a.order.Uint32(w)), nil
	}
	return uintptr(a.order.Uint64(w)), nil
}

func (a *Arena) ReadCString(addr uintptr) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for n := uintptr(0); n < MaxStringLen; n++ {
		w, err := a.window(addr+n, 1)
		if err != nil {
			return nil, err
		}
		if w[0] == 0 {
			out := make([]byte, n)
			if n > 0 {
				src, _ := a.window(addr, n)
				copy(out, src)
			}
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w at 0x%x", ErrUnterminated, addr)
}
