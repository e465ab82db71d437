package hwscan

import (
	"github.com/video-system/go-hwscan/pkg/native"
)

func ptr[T any](v T) *T { return &v }

// vaapiFixture is one Intel VAAPI device with a single H264 decode and
// encode spec.
func vaapiFixture() *native.Fixture {
	return &native.Fixture{
		Devices: []native.FixtureDevice{{
			Driver:  0,
			Ordinal: 0,
			Path:    ptr("/dev/dri/renderD128"),
			Name:    ptr("Intel Graphics"),
			Codecs: []native.FixtureCodec{{
				Codec: 264,
				Decoding: []native.FixtureDecodingSpec{
					{Chroma: 420, ColorDepth: 8, MaxWidth: 1920, MaxHeight: 1080},
				},
				Encoding: []native.FixtureEncodingSpec{
					{Chroma: 420, ColorDepth: 8, Profile: 100, MaxWidth: 1920, MaxHeight: 1080, BFramesSupported: 1},
				},
			}},
		}},
	}
}

// decodeFixture encodes f into a fresh arena and unmarshals it.
func decodeFixture(f *native.Fixture) ([]Device, error) {
	a := native.NewArena(native.Host)
	root := native.Encode(a, native.Host, f)
	return Unmarshal(a, root)
}
