package hwscan

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/video-system/go-hwscan/pkg/native"
)

// maxPrealloc caps slice capacity taken from native counts; larger arrays
// still decode, they just grow as they are read.
const maxPrealloc = 256

// maxCount is the largest element count that fits an int on this target.
var maxCount uint64 = math.MaxInt

// Unmarshal copies the EncDecDevices tree at root into Go values using the
// host layout. Nothing in the result refers to native memory. Any field
// that cannot be read or mapped fails the whole tree with a
// KindConversionFailed error naming the field.
func Unmarshal(mem native.Memory, root uintptr) ([]Device, error) {
	return UnmarshalLayout(mem, native.Host, root)
}

// UnmarshalLayout is Unmarshal for an explicit layout.
func UnmarshalLayout(mem native.Memory, layout *native.Layout, root uintptr) ([]Device, error) {
	d := &decoder{mem: mem, layout: layout}
	return d.devices(root)
}

type decoder struct {
	mem    native.Memory
	layout *native.Layout
	path   []string
}

func (d *decoder) push(elem string) { d.path = append(d.path, elem) }
func (d *decoder) pop()             { d.path = d.path[:len(d.path)-1] }

func (d *decoder) fail(field, detail string, cause error) error {
	d.push(field)
	defer d.pop()
	return conversionError(d.path, detail, cause)
}

func (d *decoder) i32(addr uintptr, field string) (int32, error) {
	v, err := d.mem.ReadI32(addr)
	if err != nil {
		return 0, d.fail(field, "read failed", err)
	}
	return v, nil
}

func (d *decoder) u32(addr uintptr, field string) (uint32, error) {
	v, err := d.mem.ReadU32(addr)
	if err != nil {
		return 0, d.fail(field, "read failed", err)
	}
	return v, nil
}

func (d *decoder) ptr(addr uintptr, field string) (uintptr, error) {
	v, err := d.mem.ReadPtr(addr)
	if err != nil {
		return 0, d.fail(field, "read failed", err)
	}
	return v, nil
}

// array reads a pointer/count pair. A non-zero count over a null pointer
// is rejected.
func (d *decoder) array(base uintptr, rec native.Info, ptrField, countField string) (uintptr, int, error) {
	p, err := d.ptr(base+rec.Off(ptrField), ptrField)
	if err != nil {
		return 0, 0, err
	}
	n, err := d.u32(base+rec.Off(countField), countField)
	if err != nil {
		return 0, 0, err
	}
	if n > 0 && p == 0 {
		return 0, 0, d.fail(ptrField, fmt.Sprintf("null array with %d elements", n), nil)
	}
	if uint64(n) > maxCount {
		return 0, 0, d.fail(countField, fmt.Sprintf("count %d exceeds the address space", n), nil)
	}
	return p, int(n), nil
}

// optionalString treats a null pointer as absent, never as "".
// Bytes are decoded lossily.
func (d *decoder) optionalString(addr uintptr, field string) (*string, error) {
	p, err := d.ptr(addr, field)
	if err != nil || p == 0 {
		return nil, err
	}

	b, err := d.mem.ReadCString(p)
	if err != nil {
		return nil, d.fail(field, "read failed", err)
	}
	s := strings.ToValidUTF8(string(b), string(utf8.RuneError))
	return &s, nil
}

func decodeEnum[E comparable](d *decoder, addr uintptr, field string, table codeTable[E]) (E, error) {
	var zero E

	code, err := d.i32(addr, field)
	if err != nil {
		return zero, err
	}

	v, ok := table.lookup(code)
	if !ok {
		return zero, d.fail(field, fmt.Sprintf("unknown code %d", code), nil)
	}
	return v, nil
}

func capFor(n int) int {
	return min(n, maxPrealloc)
}

func (d *decoder) devices(root uintptr) ([]Device, error) {
	if root == 0 {
		return nil, conversionError(nil, "null result", native.ErrNullPointer)
	}

	rec := d.layout.Devices
	arr, n, err := d.array(root, rec, native.FieldDevices, native.FieldNumDevices)
	if err != nil {
		return nil, err
	}

	out := make([]Device, 0, capFor(n))
	for i := 0; i < n; i++ {
		d.push(fmt.Sprintf("devices[%d]", i))
		dev, err := d.device(d.layout.Device.At(arr, i))
		d.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, dev)
	}
	return out, nil
}

func (d *decoder) device(addr uintptr) (Device, error) {
	var dev Device
	rec := d.layout.Device

	driver, err := decodeEnum(d, addr+rec.Off(native.FieldDriver), native.FieldDriver, driverCodes)
	if err != nil {
		return dev, err
	}
	dev.Driver = driver

	ordinal, err := d.mem.ReadU8(addr + rec.Off(native.FieldOrdinal))
	if err != nil {
		return dev, d.fail(native.FieldOrdinal, "read failed", err)
	}
	dev.Ordinal = &ordinal

	if dev.Path, err = d.optionalString(addr+rec.Off(native.FieldPath), native.FieldPath); err != nil {
		return dev, err
	}
	if dev.Name, err = d.optionalString(addr+rec.Off(native.FieldName), native.FieldName); err != nil {
		return dev, err
	}

	arr, n, err := d.array(addr, rec, native.FieldCodecs, native.FieldNumCodecs)
	if err != nil {
		return dev, err
	}

	// Keyed by codec: a codec reported twice keeps the later entry.
	dev.Codecs = make(map[Codec]CodecDetails, capFor(n))
	for i := 0; i < n; i++ {
		d.push(fmt.Sprintf("codecs[%d]", i))
		details, err := d.codecDetails(d.layout.CodecDetails.At(arr, i))
		d.pop()
		if err != nil {
			return dev, err
		}
		dev.Codecs[details.Codec] = details
	}

	return dev, nil
}

func (d *decoder) codecDetails(addr uintptr) (CodecDetails, error) {
	var cd CodecDetails
	rec := d.layout.CodecDetails

	codec, err := decodeEnum(d, addr+rec.Off(native.FieldCodec), native.FieldCodec, codecCodes)
	if err != nil {
		return cd, err
	}
	cd.Codec = codec

	decArr, decN, err := d.array(addr, rec, native.FieldDecodingSpecs, native.FieldNumDecodingSpecs)
	if err != nil {
		return cd, err
	}
	cd.DecodingSpecs = make([]DecodingSpec, 0, capFor(decN))
	for i := 0; i < decN; i++ {
		d.push(fmt.Sprintf("decoding_specs[%d]", i))
		spec, err := d.decodingSpec(d.layout.DecodingSpec.At(decArr, i))
		d.pop()
		if err != nil {
			return cd, err
		}
		cd.DecodingSpecs = append(cd.DecodingSpecs, spec)
	}

	encArr, encN, err := d.array(addr, rec, native.FieldEncodingSpecs, native.FieldNumEncodingSpecs)
	if err != nil {
		return cd, err
	}
	cd.EncodingSpecs = make([]EncodingSpec, 0, capFor(encN))
	for i := 0; i < encN; i++ {
		d.push(fmt.Sprintf("encoding_specs[%d]", i))
		spec, err := d.encodingSpec(d.layout.EncodingSpec.At(encArr, i))
		d.pop()
		if err != nil {
			return cd, err
		}
		cd.EncodingSpecs = append(cd.EncodingSpecs, spec)
	}

	return cd, nil
}

func (d *decoder) decodingSpec(addr uintptr) (DecodingSpec, error) {
	var s DecodingSpec
	rec := d.layout.DecodingSpec
	var err error

	if s.Chroma, err = decodeEnum(d, addr+rec.Off(native.FieldChroma), native.FieldChroma, chromaCodes); err != nil {
		return s, err
	}
	if s.ColorDepth, err = decodeEnum(d, addr+rec.Off(native.FieldColorDepth), native.FieldColorDepth, colorDepthCodes); err != nil {
		return s, err
	}
	if s.MaxWidth, err = d.u32(addr+rec.Off(native.FieldMaxWidth), native.FieldMaxWidth); err != nil {
		return s, err
	}
	if s.MaxHeight, err = d.u32(addr+rec.Off(native.FieldMaxHeight), native.FieldMaxHeight); err != nil {
		return s, err
	}
	return s, nil
}

func (d *decoder) encodingSpec(addr uintptr) (EncodingSpec, error) {
	var s EncodingSpec
	rec := d.layout.EncodingSpec
	var err error

	if s.Chroma, err = decodeEnum(d, addr+rec.Off(native.FieldChroma), native.FieldChroma, chromaCodes); err != nil {
		return s, err
	}
	if s.ColorDepth, err = decodeEnum(d, addr+rec.Off(native.FieldColorDepth), native.FieldColorDepth, colorDepthCodes); err != nil {
		return s, err
	}
	if s.Profile, err = decodeEnum(d, addr+rec.Off(native.FieldProfile), native.FieldProfile, profileCodes); err != nil {
		return s, err
	}
	if s.MaxWidth, err = d.u32(addr+rec.Off(native.FieldMaxWidth), native.FieldMaxWidth); err != nil {
		return s, err
	}
	if s.MaxHeight, err = d.u32(addr+rec.Off(native.FieldMaxHeight), native.FieldMaxHeight); err != nil {
		return s, err
	}

	bframes, err := d.i32(addr+rec.Off(native.FieldBFramesSupported), native.FieldBFramesSupported)
	if err != nil {
		return s, err
	}
	s.BFramesSupported = tristateFromNative(bframes)
	return s, nil
}
