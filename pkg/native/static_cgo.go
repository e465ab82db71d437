//go:build cgo && hwscan_static

package native

/*
#cgo CFLAGS: -I${SRCDIR}/include
#cgo LDFLAGS: -lenc_dec_hwscan

#include <stdlib.h>
#include "enc_dec_hwscan.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// StaticLibrary is the scanner linked into the binary at build time.
type StaticLibrary struct{}

// OpenStatic checks the computed layout against the C header and returns
// the linked scanner.
func OpenStatic() (*StaticLibrary, error) {
	if err := verifyLayout(Host); err != nil {
		return nil, err
	}
	return &StaticLibrary{}, nil
}

func (StaticLibrary) Scan(out *uintptr) int32 {
	var result *C.EncDecDevices
	status := C.scan_devices(&result)
	if status == 0 {
		*out = uintptr(unsafe.Pointer(result))
	}
	return int32(status)
}

func (StaticLibrary) Release(addr uintptr) {
	C.free_devices((*C.EncDecDevices)(at(addr)))
}

func (StaticLibrary) Memory() Memory {
	return Process
}

// Close is a no-op, the library is part of the binary.
func (StaticLibrary) Close() error {
	return nil
}

type headerRecord struct {
	info    Info
	size    uintptr
	offsets map[string]uintptr
}

func verifyLayout(l *Layout) error {
	var (
		devs C.EncDecDevices
		dev  C.Device
		cd   C.CodecDetails
		ds   C.DecodingSpec
		es   C.EncodingSpec
	)

	records := []headerRecord{
		{l.Devices, unsafe.Sizeof(devs), map[string]uintptr{
			FieldDevices:    unsafe.Offsetof(devs.devices),
			FieldNumDevices: unsafe.Offsetof(devs.num_devices),
		}},
		{l.Device, unsafe.Sizeof(dev), map[string]uintptr{
			FieldDriver:    unsafe.Offsetof(dev.driver),
			FieldOrdinal:   unsafe.Offsetof(dev.ordinal),
			FieldPath:      unsafe.Offsetof(dev.path),
			FieldName:      unsafe.Offsetof(dev.name),
			FieldCodecs:    unsafe.Offsetof(dev.codecs),
			FieldNumCodecs: unsafe.Offsetof(dev.num_codecs),
		}},
		{l.CodecDetails, unsafe.Sizeof(cd), map[string]uintptr{
			FieldCodec:            unsafe.Offsetof(cd.codec),
			FieldDecodingSpecs:    unsafe.Offsetof(cd.decoding_specs),
			FieldNumDecodingSpecs: unsafe.Offsetof(cd.num_decoding_specs),
			FieldEncodingSpecs:    unsafe.Offsetof(cd.encoding_specs),
			FieldNumEncodingSpecs: unsafe.Offsetof(cd.num_encoding_specs),
		}},
		{l.DecodingSpec, unsafe.Sizeof(ds), map[string]uintptr{
			FieldChroma:     unsafe.Offsetof(ds.chroma),
			FieldColorDepth: unsafe.Offsetof(ds.color_depth),
			FieldMaxWidth:   unsafe.Offsetof(ds.max_width),
			FieldMaxHeight:  unsafe.Offsetof(ds.max_height),
		}},
		{l.EncodingSpec, unsafe.Sizeof(es), map[string]uintptr{
			FieldChroma:           unsafe.Offsetof(es.chroma),
			FieldColorDepth:       unsafe.Offsetof(es.color_depth),
			FieldProfile:          unsafe.Offsetof(es.profile),
			FieldMaxWidth:         unsafe.Offsetof(es.max_width),
			FieldMaxHeight:        unsafe.Offsetof(es.max_height),
			FieldBFramesSupported: unsafe.Offsetof(es.b_frames_supported),
		}},
	}

	for _, r := range records {
		if r.info.Size != r.size {
			return fmt.Errorf("layout mismatch: %s size %d, header %d", r.info.Name, r.info.Size, r.size)
		}
		for name, off := range r.offsets {
			if got := r.info.Off(name); got != off {
				return fmt.Errorf("layout mismatch: %s.%s at %d, header %d", r.info.Name, name, got, off)
			}
		}
	}
	return nil
}
