package hwscan

import (
	"maps"
	"slices"
)

// Device is one hardware unit exposed by a driver together with the codec
// capabilities it reported.
type Device struct {
	Driver  Driver                 `json:"driver" yaml:"driver"`
	Ordinal *uint8                 `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
	Path    *string                `json:"path,omitempty" yaml:"path,omitempty"`
	Name    *string                `json:"name,omitempty" yaml:"name,omitempty"`
	Codecs  map[Codec]CodecDetails `json:"codecs" yaml:"codecs"`
}

// CodecDetails holds the decode and encode capabilities for one codec.
// Specs keep the order the scanner reported them in.
type CodecDetails struct {
	Codec         Codec          `json:"codec" yaml:"codec"`
	DecodingSpecs []DecodingSpec `json:"decodingSpecs" yaml:"decodingSpecs"`
	EncodingSpecs []EncodingSpec `json:"encodingSpecs" yaml:"encodingSpecs"`
}

// DecodingSpec is one supported decode configuration.
type DecodingSpec struct {
	Chroma     Chroma     `json:"chroma" yaml:"chroma"`
	ColorDepth ColorDepth `json:"colorDepth" yaml:"colorDepth"`
	MaxWidth   uint32     `json:"maxWidth" yaml:"maxWidth"`
	MaxHeight  uint32     `json:"maxHeight" yaml:"maxHeight"`
}

// EncodingSpec is one supported encode configuration.
type EncodingSpec struct {
	Chroma           Chroma        `json:"chroma" yaml:"chroma"`
	ColorDepth       ColorDepth    `json:"colorDepth" yaml:"colorDepth"`
	Profile          EncodeProfile `json:"profile" yaml:"profile"`
	MaxWidth         uint32        `json:"maxWidth" yaml:"maxWidth"`
	MaxHeight        uint32        `json:"maxHeight" yaml:"maxHeight"`
	BFramesSupported Tristate      `json:"bFramesSupported" yaml:"bFramesSupported"`
}

// Supports reports whether the device decodes or encodes codec.
func (d *Device) Supports(codec Codec) bool {
	_, ok := d.Codecs[codec]
	return ok
}

// CanDecode reports whether any decoding spec for codec covers the given
// format and dimensions.
func (d *Device) CanDecode(codec Codec, chroma Chroma, depth ColorDepth, width, height uint32) bool {
	details, ok := d.Codecs[codec]
	if !ok {
		return false
	}
	for _, s := range details.DecodingSpecs {
		if s.Chroma == chroma && s.ColorDepth == depth && width <= s.MaxWidth && height <= s.MaxHeight {
			return true
		}
	}
	return false
}

// CanEncode reports whether any encoding spec for codec offers profile at
// the given dimensions.
func (d *Device) CanEncode(codec Codec, profile EncodeProfile, width, height uint32) bool {
	details, ok := d.Codecs[codec]
	if !ok {
		return false
	}
	for _, s := range details.EncodingSpecs {
		if s.Profile == profile && width <= s.MaxWidth && height <= s.MaxHeight {
			return true
		}
	}
	return false
}

// SortedCodecs returns the device's codecs in AllCodecs order.
func (d *Device) SortedCodecs() []Codec {
	codecs := slices.Collect(maps.Keys(d.Codecs))
	slices.Sort(codecs)
	return codecs
}

// Clone returns a deep copy of d.
func (d *Device) Clone() Device {
	out := *d
	if d.Ordinal != nil {
		v := *d.Ordinal
		out.Ordinal = &v
	}
	if d.Path != nil {
		v := *d.Path
		out.Path = &v
	}
	if d.Name != nil {
		v := *d.Name
		out.Name = &v
	}
	if d.Codecs != nil {
		out.Codecs = make(map[Codec]CodecDetails, len(d.Codecs))
		for k, v := range d.Codecs {
			out.Codecs[k] = CodecDetails{
				Codec:         v.Codec,
				DecodingSpecs: slices.Clone(v.DecodingSpecs),
				EncodingSpecs: slices.Clone(v.EncodingSpecs),
			}
		}
	}
	return out
}

// CloneDevices deep-copies a device list.
func CloneDevices(devices []Device) []Device {
	if devices == nil {
		return nil
	}
	out := make([]Device, len(devices))
	for i := range devices {
		out[i] = devices[i].Clone()
	}
	return out
}
