package native

import (
	"fmt"
	"unsafe"
)

// FieldKind is the C scalar type of a record field.
type FieldKind int

const (
	U8  FieldKind = iota // uint8_t
	I32                  // int32_t, also used for every enum
	U32                  // uint32_t
	Ptr                  // any pointer
)

func (k FieldKind) String() string {
	switch k {
	case U8:
		return "u8"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case Ptr:
		return "ptr"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

func (k FieldKind) size(ptrSize uintptr) uintptr {
	switch k {
	case U8:
		return 1
	case I32, U32:
		return 4
	case Ptr:
		return ptrSize
	default:
		return 0
	}
}

// Field is one member of a native record.
type Field struct {
	Name string
	Kind FieldKind
}

// Record is the declaration order of a native struct.
type Record struct {
	Name   string
	Fields []Field
}

// Field names shared with enc_dec_hwscan.h.
const (
	FieldDevices          = "devices"
	FieldNumDevices       = "num_devices"
	FieldDriver           = "driver"
	FieldOrdinal          = "ordinal"
	FieldPath             = "path"
	FieldName             = "name"
	FieldCodecs           = "codecs"
	FieldNumCodecs        = "num_codecs"
	FieldCodec            = "codec"
	FieldDecodingSpecs    = "decoding_specs"
	FieldNumDecodingSpecs = "num_decoding_specs"
	FieldEncodingSpecs    = "encoding_specs"
	FieldNumEncodingSpecs = "num_encoding_specs"
	FieldChroma           = "chroma"
	FieldColorDepth       = "color_depth"
	FieldProfile          = "profile"
	FieldMaxWidth         = "max_width"
	FieldMaxHeight        = "max_height"
	FieldBFramesSupported = "b_frames_supported"
)

// The records produced by scan_devices. Field order must match the header.
var (
	DevicesRecord = Record{Name: "EncDecDevices", Fields: []Field{
		{FieldDevices, Ptr},
		{FieldNumDevices, U32},
	}}

	DeviceRecord = Record{Name: "Device", Fields: []Field{
		{FieldDriver, I32},
		{FieldOrdinal, U8},
		{FieldPath, Ptr},
		{FieldName, Ptr},
		{FieldCodecs, Ptr},
		{FieldNumCodecs, U32},
	}}

	CodecDetailsRecord = Record{Name: "CodecDetails", Fields: []Field{
		{FieldCodec, I32},
		{FieldDecodingSpecs, Ptr},
		{FieldNumDecodingSpecs, U32},
		{FieldEncodingSpecs, Ptr},
		{FieldNumEncodingSpecs, U32},
	}}

	DecodingSpecRecord = Record{Name: "DecodingSpec", Fields: []Field{
		{FieldChroma, I32},
		{FieldColorDepth, I32},
		{FieldMaxWidth, U32},
		{FieldMaxHeight, U32},
	}}

	EncodingSpecRecord = Record{Name: "EncodingSpec", Fields: []Field{
		{FieldChroma, I32},
		{FieldColorDepth, I32},
		{FieldProfile, I32},
		{FieldMaxWidth, U32},
		{FieldMaxHeight, U32},
		{FieldBFramesSupported, I32},
	}}
)

// Info is the computed size, alignment and field offsets of a record.
type Info struct {
	Name      string
	Size      uintptr
	Align     uintptr
	FieldOffs map[string]uintptr
	Fields    []Field
}

// Off returns the offset of a field. Unknown names panic, they are
// programming errors rather than bad native data.
func (i Info) Off(field string) uintptr {
	off, ok := i.FieldOffs[field]
	if !ok {
		panic(fmt.Sprintf("native: record %s has no field %q", i.Name, field))
	}
	return off
}

// At returns the address of element idx of an array of this record.
func (i Info) At(base uintptr, idx int) uintptr {
	return base + uintptr(idx)*i.Size
}

func alignTo(off, align uintptr) uintptr {
	return (off + align - 1) &^ (align - 1)
}

// Calculate lays out r with C alignment rules for the given pointer size.
func Calculate(r Record, ptrSize uintptr) Info {
	info := Info{
		Name:      r.Name,
		Align:     1,
		FieldOffs: make(map[string]uintptr, len(r.Fields)),
		Fields:    r.Fields,
	}

	offset := uintptr(0)
	for _, f := range r.Fields {
		size := f.Kind.size(ptrSize)
		offset = alignTo(offset, size)
		info.FieldOffs[f.Name] = offset
		if size > info.Align {
			info.Align = size
		}
		offset += size
	}

	info.Size = alignTo(offset, info.Align)
	return info
}

// Layout holds every record of the result tree for one pointer size.
type Layout struct {
	PtrSize      uintptr
	Devices      Info
	Device       Info
	CodecDetails Info
	DecodingSpec Info
	EncodingSpec Info
}

// NewLayout computes the layout for a target with the given pointer size.
func NewLayout(ptrSize uintptr) *Layout {
	return &Layout{
		PtrSize:      ptrSize,
		Devices:      Calculate(DevicesRecord, ptrSize),
		Device:       Calculate(DeviceRecord, ptrSize),
		CodecDetails: Calculate(CodecDetailsRecord, ptrSize),
		DecodingSpec: Calculate(DecodingSpecRecord, ptrSize),
		EncodingSpec: Calculate(EncodingSpecRecord, ptrSize),
	}
}

// Records returns the record layouts from the root down.
func (l *Layout) Records() []Info {
	return []Info{l.Devices, l.Device, l.CodecDetails, l.DecodingSpec, l.EncodingSpec}
}

// Host is the layout of the running process.
var Host = NewLayout(unsafe.Sizeof(uintptr(0)))
