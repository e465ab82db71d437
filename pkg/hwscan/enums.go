package hwscan

import (
	"fmt"
)

// codeTable maps one enum to the integer codes agreed with the scanner.
// Lookups are exact; there is no fallback value.
type codeTable[E comparable] struct {
	toNative   map[E]int32
	fromNative map[int32]E
}

func newCodeTable[E comparable](codes map[E]int32) codeTable[E] {
	t := codeTable[E]{
		toNative:   make(map[E]int32, len(codes)),
		fromNative: make(map[int32]E, len(codes)),
	}
	for v, code := range codes {
		if _, dup := t.fromNative[code]; dup {
			panic(fmt.Sprintf("hwscan: native code %d mapped twice", code))
		}
		t.toNative[v] = code
		t.fromNative[code] = v
	}
	return t
}

func (t codeTable[E]) lookup(code int32) (E, bool) {
	v, ok := t.fromNative[code]
	return v, ok
}

func (t codeTable[E]) native(v E) int32 {
	code, ok := t.toNative[v]
	if !ok {
		panic(fmt.Sprintf("hwscan: %v has no native code", v))
	}
	return code
}

// enumName and parseEnum back the Stringer and text encodings of the
// uint8 enums below; names are indexed by value.
func enumName[E ~uint8](names []string, v E, typ string) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typ, uint8(v))
}

func parseEnum[E ~uint8](names []string, text []byte, typ string) (E, error) {
	for i, n := range names {
		if n != "" && n == string(text) {
			return E(i), nil
		}
	}
	return 0, fmt.Errorf("hwscan: unknown %s %q", typ, text)
}

// Driver is a hardware acceleration backend family.
type Driver uint8

const (
	DriverVaapi Driver = iota + 1
	DriverNvidia
)

var (
	driverNames = []string{DriverVaapi: "Vaapi", DriverNvidia: "Nvidia"}
	driverCodes = newCodeTable(map[Driver]int32{
		DriverVaapi:  0,
		DriverNvidia: 1,
	})
)

func (d Driver) String() string { return enumName(driverNames, d, "Driver") }

// Native returns the scanner's code for d.
func (d Driver) Native() int32 { return driverCodes.native(d) }

func (d Driver) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Driver) UnmarshalText(text []byte) (err error) {
	*d, err = parseEnum[Driver](driverNames, text, "driver")
	return err
}

// DriverFromNative resolves a scanner driver code.
func DriverFromNative(code int32) (Driver, bool) { return driverCodes.lookup(code) }

// Codec is a video compression standard.
type Codec uint8

const (
	CodecMpeg1 Codec = iota + 1
	CodecMpeg2
	CodecMpeg4
	CodecVc1
	CodecH264
	CodecHevc
	CodecVp8
	CodecVp9
	CodecAv1
)

// AllCodecs lists every codec in reporting order.
var AllCodecs = []Codec{
	CodecMpeg1, CodecMpeg2, CodecMpeg4, CodecVc1,
	CodecH264, CodecHevc, CodecVp8, CodecVp9, CodecAv1,
}

var (
	codecNames = []string{
		CodecMpeg1: "Mpeg1",
		CodecMpeg2: "Mpeg2",
		CodecMpeg4: "Mpeg4",
		CodecVc1:   "Vc1",
		CodecH264:  "H264",
		CodecHevc:  "Hevc",
		CodecVp8:   "Vp8",
		CodecVp9:   "Vp9",
		CodecAv1:   "Av1",
	}
	codecCodes = newCodeTable(map[Codec]int32{
		CodecMpeg1: 1,
		CodecMpeg2: 2,
		CodecMpeg4: 4,
		CodecVc1:   7,
		CodecH264:  264,
		CodecHevc:  265,
		CodecVp8:   8,
		CodecVp9:   9,
		CodecAv1:   10,
	})
)

func (c Codec) String() string { return enumName(codecNames, c, "Codec") }

// Native returns the scanner's code for c.
func (c Codec) Native() int32 { return codecCodes.native(c) }

func (c Codec) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Codec) UnmarshalText(text []byte) (err error) {
	*c, err = parseEnum[Codec](codecNames, text, "codec")
	return err
}

// CodecFromNative resolves a scanner codec code.
func CodecFromNative(code int32) (Codec, bool) { return codecCodes.lookup(code) }

// Chroma is a chroma subsampling format.
type Chroma uint8

const (
	ChromaMonochrome Chroma = iota + 1
	ChromaYuv420
	ChromaYuv422
	ChromaYuv444
)

var (
	chromaNames = []string{
		ChromaMonochrome: "Monochrome",
		ChromaYuv420:     "Yuv420",
		ChromaYuv422:     "Yuv422",
		ChromaYuv444:     "Yuv444",
	}
	chromaCodes = newCodeTable(map[Chroma]int32{
		ChromaMonochrome: 0,
		ChromaYuv420:     420,
		ChromaYuv422:     422,
		ChromaYuv444:     444,
	})
)

func (c Chroma) String() string { return enumName(chromaNames, c, "Chroma") }

// Native returns the scanner's code for c.
func (c Chroma) Native() int32 { return chromaCodes.native(c) }

func (c Chroma) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Chroma) UnmarshalText(text []byte) (err error) {
	*c, err = parseEnum[Chroma](chromaNames, text, "chroma")
	return err
}

// ChromaFromNative resolves a scanner chroma code.
func ChromaFromNative(code int32) (Chroma, bool) { return chromaCodes.lookup(code) }

// ColorDepth is the bit depth per sample.
type ColorDepth uint8

const (
	ColorDepthBit8 ColorDepth = iota + 1
	ColorDepthBit10
	ColorDepthBit12
)

var (
	colorDepthNames = []string{
		ColorDepthBit8:  "Bit8",
		ColorDepthBit10: "Bit10",
		ColorDepthBit12: "Bit12",
	}
	colorDepthCodes = newCodeTable(map[ColorDepth]int32{
		ColorDepthBit8:  8,
		ColorDepthBit10: 10,
		ColorDepthBit12: 12,
	})
)

func (c ColorDepth) String() string { return enumName(colorDepthNames, c, "ColorDepth") }

// Native returns the scanner's code for c.
func (c ColorDepth) Native() int32 { return colorDepthCodes.native(c) }

func (c ColorDepth) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ColorDepth) UnmarshalText(text []byte) (err error) {
	*c, err = parseEnum[ColorDepth](colorDepthNames, text, "color depth")
	return err
}

// ColorDepthFromNative resolves a scanner color depth code.
func ColorDepthFromNative(code int32) (ColorDepth, bool) { return colorDepthCodes.lookup(code) }

// EncodeProfile is a codec profile an encoder can produce.
type EncodeProfile uint8

const (
	ProfileBaseline EncodeProfile = iota + 1
	ProfileMain
	ProfileMain10
	ProfileHigh
	ProfileHigh10
	ProfileHigh12
	ProfileHigh444
)

var (
	profileNames = []string{
		ProfileBaseline: "Baseline",
		ProfileMain:     "Main",
		ProfileMain10:   "Main10",
		ProfileHigh:     "High",
		ProfileHigh10:   "High10",
		ProfileHigh12:   "High12",
		ProfileHigh444:  "High444",
	}
	profileCodes = newCodeTable(map[EncodeProfile]int32{
		ProfileBaseline: 1,
		ProfileMain:     10,
		ProfileMain10:   11,
		ProfileHigh:     100,
		ProfileHigh10:   110,
		ProfileHigh12:   112,
		ProfileHigh444:  140,
	})
)

func (p EncodeProfile) String() string { return enumName(profileNames, p, "EncodeProfile") }

// Native returns the scanner's code for p.
func (p EncodeProfile) Native() int32 { return profileCodes.native(p) }

func (p EncodeProfile) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *EncodeProfile) UnmarshalText(text []byte) (err error) {
	*p, err = parseEnum[EncodeProfile](profileNames, text, "profile")
	return err
}

// ProfileFromNative resolves a scanner profile code.
func ProfileFromNative(code int32) (EncodeProfile, bool) { return profileCodes.lookup(code) }

// Tristate is a boolean the scanner may not know. The zero value is
// TristateUnknown.
type Tristate uint8

const (
	TristateUnknown Tristate = iota
	TristateFalse
	TristateTrue
)

// TristateOf converts a known boolean.
func TristateOf(b bool) Tristate {
	if b {
		return TristateTrue
	}
	return TristateFalse
}

// tristateFromNative maps 0 and 1; every other value is a sentinel for
// "not reported" and never an error.
func tristateFromNative(v int32) Tristate {
	switch v {
	case 0:
		return TristateFalse
	case 1:
		return TristateTrue
	default:
		return TristateUnknown
	}
}

// Bool returns the value and whether it is known.
func (t Tristate) Bool() (value, known bool) {
	return t == TristateTrue, t != TristateUnknown
}

func (t Tristate) String() string {
	switch t {
	case TristateFalse:
		return "false"
	case TristateTrue:
		return "true"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes known values as booleans and unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	if t == TristateUnknown {
		return []byte("null"), nil
	}
	return []byte(t.String()), nil
}

func (t *Tristate) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*t = TristateUnknown
	case "true":
		*t = TristateTrue
	case "false":
		*t = TristateFalse
	default:
		return fmt.Errorf("hwscan: invalid tristate %s", data)
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (t Tristate) MarshalYAML() (any, error) {
	if v, known := t.Bool(); known {
		return v, nil
	}
	return nil, nil
}
