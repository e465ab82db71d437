package native

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Fixture describes a scan result in raw native terms. Codes are written
// verbatim, so a fixture can carry values the marshaller must reject.
type Fixture struct {
	// Status is returned by Scan. Non-zero means no tree is produced.
	Status  int32           `yaml:"status"`
	Devices []FixtureDevice `yaml:"devices"`
}

type FixtureDevice struct {
	Driver  int32          `yaml:"driver"`
	Ordinal uint8          `yaml:"ordinal"`
	Path    *string        `yaml:"path"`
	Name    *string        `yaml:"name"`
	Codecs  []FixtureCodec `yaml:"codecs"`
	// RawPath and RawName are written as-is instead of Path and Name when
	// set, for byte sequences that are not valid UTF-8.
	RawPath []byte `yaml:"raw_path,omitempty"`
	RawName []byte `yaml:"raw_name,omitempty"`
	// NumCodecs overrides the written count. Combined with an empty Codecs
	// list it produces a non-zero count over a null array.
	NumCodecs *uint32 `yaml:"num_codecs,omitempty"`
}

type FixtureCodec struct {
	Codec    int32                 `yaml:"codec"`
	Decoding []FixtureDecodingSpec `yaml:"decoding"`
	Encoding []FixtureEncodingSpec `yaml:"encoding"`
}

type FixtureDecodingSpec struct {
	Chroma     int32  `yaml:"chroma"`
	ColorDepth int32  `yaml:"color_depth"`
	MaxWidth   uint32 `yaml:"max_width"`
	MaxHeight  uint32 `yaml:"max_height"`
}

type FixtureEncodingSpec struct {
	Chroma           int32  `yaml:"chroma"`
	ColorDepth       int32  `yaml:"color_depth"`
	Profile          int32  `yaml:"profile"`
	MaxWidth         uint32 `yaml:"max_width"`
	MaxHeight        uint32 `yaml:"max_height"`
	BFramesSupported int32  `yaml:"b_frames_supported"`
}

// LoadFixture reads a fixture from a YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	return &f, nil
}

// Encode writes the fixture's device tree into a and returns the address
// of the EncDecDevices root. Empty arrays are written as a null pointer
// with a zero count, as the scanner does.
func Encode(a *Arena, l *Layout, f *Fixture) uintptr {
	root := a.Alloc(l.Devices.Size, l.Devices.Align)

	var devices uintptr
	if len(f.Devices) > 0 {
		devices = a.Alloc(l.Device.Size*uintptr(len(f.Devices)), l.Device.Align)
	}
	for i := range f.Devices {
		encodeDevice(a, l, l.Device.At(devices, i), &f.Devices[i])
	}

	a.PutPtr(root+l.Devices.Off(FieldDevices), devices)
	a.PutU32(root+l.Devices.Off(FieldNumDevices), uint32(len(f.Devices)))
	return root
}

func encodeDevice(a *Arena, l *Layout, addr uintptr, d *FixtureDevice) {
	rec := l.Device
	a.PutI32(addr+rec.Off(FieldDriver), d.Driver)
	a.PutU8(addr+rec.Off(FieldOrdinal), d.Ordinal)
	a.PutPtr(addr+rec.Off(FieldPath), putOptional(a, d.Path, d.RawPath))
	a.PutPtr(addr+rec.Off(FieldName), putOptional(a, d.Name, d.RawName))

	var codecs uintptr
	if len(d.Codecs) > 0 {
		codecs = a.Alloc(l.CodecDetails.Size*uintptr(len(d.Codecs)), l.CodecDetails.Align)
	}
	for i := range d.Codecs {
		encodeCodec(a, l, l.CodecDetails.At(codecs, i), &d.Codecs[i])
	}

	count := uint32(len(d.Codecs))
	if d.NumCodecs != nil {
		count = *d.NumCodecs
	}
	a.PutPtr(addr+rec.Off(FieldCodecs), codecs)
	a.PutU32(addr+rec.Off(FieldNumCodecs), count)
}

func putOptional(a *Arena, s *string, raw []byte) uintptr {
	switch {
	case raw != nil:
		return a.PutCString(string(raw))
	case s != nil:
		return a.PutCString(*s)
	default:
		return 0
	}
}

func encodeCodec(a *Arena, l *Layout, addr uintptr, c *FixtureCodec) {
	rec := l.CodecDetails
	a.PutI32(addr+rec.Off(FieldCodec), c.Codec)

	var dec uintptr
	if len(c.Decoding) > 0 {
		dec = a.Alloc(l.DecodingSpec.Size*uintptr(len(c.Decoding)), l.DecodingSpec.Align)
	}
	for i, s := range c.Decoding {
		p := l.DecodingSpec.At(dec, i)
		a.PutI32(p+l.DecodingSpec.Off(FieldChroma), s.Chroma)
		a.PutI32(p+l.DecodingSpec.Off(FieldColorDepth), s.ColorDepth)
		a.PutU32(p+l.DecodingSpec.Off(FieldMaxWidth), s.MaxWidth)
		a.PutU32(p+l.DecodingSpec.Off(FieldMaxHeight), s.MaxHeight)
	}

	var enc uintptr
	if len(c.Encoding) > 0 {
		enc = a.Alloc(l.EncodingSpec.Size*uintptr(len(c.Encoding)), l.EncodingSpec.Align)
	}
	for i, s := range c.Encoding {
		p := l.EncodingSpec.At(enc, i)
		a.PutI32(p+l.EncodingSpec.Off(FieldChroma), s.Chroma)
		a.PutI32(p+l.EncodingSpec.Off(FieldColorDepth), s.ColorDepth)
		a.PutI32(p+l.EncodingSpec.Off(FieldProfile), s.Profile)
		a.PutU32(p+l.EncodingSpec.Off(FieldMaxWidth), s.MaxWidth)
		a.PutU32(p+l.EncodingSpec.Off(FieldMaxHeight), s.MaxHeight)
		a.PutI32(p+l.EncodingSpec.Off(FieldBFramesSupported), s.BFramesSupported)
	}

	a.PutPtr(addr+rec.Off(FieldDecodingSpecs), dec)
	a.PutU32(addr+rec.Off(FieldNumDecodingSpecs), uint32(len(c.Decoding)))
	a.PutPtr(addr+rec.Off(FieldEncodingSpecs), enc)
	a.PutU32(addr+rec.Off(FieldNumEncodingSpecs), uint32(len(c.Encoding)))
}

// FixtureStats counts how a FixtureLibrary has been driven.
type FixtureStats struct {
	Scans           int // calls to Scan
	Acquired        int // trees handed out
	Released        int // successful releases
	DoubleReleases  int // releases of an already released tree
	UnknownReleases int // releases of an address never handed out
}

// Outstanding is the number of trees handed out and not yet released.
func (s FixtureStats) Outstanding() int {
	return s.Acquired - s.Released
}

// FixtureLibrary replays a Fixture through an Arena. Every Scan encodes a
// fresh tree; Release retires it so later reads fail. Once every tree is
// released the next Scan reclaims the arena, so a long-running replay
// stays bounded.
type FixtureLibrary struct {
	fixture *Fixture
	layout  *Layout
	arena   *Arena

	mu    sync.Mutex
	live  map[uintptr]span
	freed map[uintptr]bool
	floor uintptr // addresses below were reclaimed by a reset
	stats FixtureStats
}

// NewFixtureLibrary returns a library that serves f on every Scan.
func NewFixtureLibrary(f *Fixture) *FixtureLibrary {
	return &FixtureLibrary{
		fixture: f,
		layout:  Host,
		arena:   NewArena(Host),
		live:    make(map[uintptr]span),
		freed:   make(map[uintptr]bool),
	}
}

// OpenFixture loads a fixture file and wraps it in a FixtureLibrary.
func OpenFixture(path string) (*FixtureLibrary, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	return NewFixtureLibrary(f), nil
}

func (l *FixtureLibrary) Scan(out *uintptr) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Scans++
	if l.fixture.Status != 0 {
		return l.fixture.Status
	}

	if len(l.live) == 0 && l.arena.Len() > 0 {
		l.floor = l.arena.Mark()
		l.arena.Reset()
		clear(l.freed)
	}

	start := l.arena.Mark()
	root := Encode(l.arena, l.layout, l.fixture)
	l.live[root] = span{start, l.arena.Mark()}
	l.stats.Acquired++

	*out = root
	return 0
}

func (l *FixtureLibrary) Release(addr uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.live[addr]
	switch {
	case ok:
		delete(l.live, addr)
		l.freed[addr] = true
		l.arena.Retire(s.start, s.end)
		l.stats.Released++
	case l.freed[addr], addr >= arenaBase && addr < l.floor:
		l.stats.DoubleReleases++
	default:
		l.stats.UnknownReleases++
	}
}

func (l *FixtureLibrary) Memory() Memory {
	return l.arena
}

// Stats returns a snapshot of the library counters.
func (l *FixtureLibrary) Stats() FixtureStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Layout is the layout trees are encoded with.
func (l *FixtureLibrary) Layout() *Layout {
	return l.layout
}
