// Package native is the binary contract with the enc_dec_hwscan scanner
// library: record layouts, memory access, and the ways of reaching the
// scan_devices/free_devices pair (dlopen, static cgo link, or a replayed
// fixture).
package native

// Library is the scan/release pair exported by a scanner.
//
// Scan either writes the address of a populated EncDecDevices tree to out
// and returns 0, or returns a non-zero status and leaves out meaningless.
// A tree handed out by Scan belongs to the library until Release is
// called on it exactly once. Memory is the address space trees live in.
type Library interface {
	Scan(out *uintptr) int32
	Release(addr uintptr)
	Memory() Memory
}
