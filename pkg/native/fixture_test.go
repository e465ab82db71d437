package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture("testdata/vaapi_h264.yaml")
	require.NoError(t, err)

	require.Len(t, f.Devices, 1)
	dev := f.Devices[0]
	assert.Equal(t, int32(0), dev.Driver)
	require.NotNil(t, dev.Path)
	assert.Equal(t, "/dev/dri/renderD128", *dev.Path)
	require.NotNil(t, dev.Name)
	assert.Equal(t, "Intel Graphics", *dev.Name)
	require.Len(t, dev.Codecs, 1)
	assert.Equal(t, int32(264), dev.Codecs[0].Codec)
	assert.Equal(t, int32(100), dev.Codecs[0].Encoding[0].Profile)
	assert.Equal(t, int32(1), dev.Codecs[0].Encoding[0].BFramesSupported)
}

func TestLoadFixtureErrors(t *testing.T) {
	_, err := LoadFixture("testdata/missing.yaml")
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("devices: {"), 0o644))
	_, err = LoadFixture(bad)
	require.Error(t, err)
}

func TestEncodeRoundTripsRaw(t *testing.T) {
	f, err := LoadFixture("testdata/vaapi_h264.yaml")
	require.NoError(t, err)

	a := NewArena(Host)
	root := Encode(a, Host, f)

	devs, err := a.ReadPtr(root + Host.Devices.Off(FieldDevices))
	require.NoError(t, err)
	n, err := a.ReadU32(root + Host.Devices.Off(FieldNumDevices))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	ord, err := a.ReadU8(devs + Host.Device.Off(FieldOrdinal))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), ord)

	namePtr, err := a.ReadPtr(devs + Host.Device.Off(FieldName))
	require.NoError(t, err)
	name, err := a.ReadCString(namePtr)
	require.NoError(t, err)
	assert.Equal(t, "Intel Graphics", string(name))

	codecs, err := a.ReadPtr(devs + Host.Device.Off(FieldCodecs))
	require.NoError(t, err)
	codec, err := a.ReadI32(codecs + Host.CodecDetails.Off(FieldCodec))
	require.NoError(t, err)
	assert.Equal(t, int32(264), codec)

	enc, err := a.ReadPtr(codecs + Host.CodecDetails.Off(FieldEncodingSpecs))
	require.NoError(t, err)
	bframes, err := a.ReadI32(enc + Host.EncodingSpec.Off(FieldBFramesSupported))
	require.NoError(t, err)
	assert.Equal(t, int32(1), bframes)
}

func TestEncodeEmpty(t *testing.T) {
	a := NewArena(Host)
	root := Encode(a, Host, &Fixture{})

	p, err := a.ReadPtr(root + Host.Devices.Off(FieldDevices))
	require.NoError(t, err)
	assert.Zero(t, p)

	n, err := a.ReadU32(root + Host.Devices.Off(FieldNumDevices))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFixtureLibraryScanRelease(t *testing.T) {
	lib, err := OpenFixture("testdata/vaapi_h264.yaml")
	require.NoError(t, err)

	var first, second uintptr
	require.Equal(t, int32(0), lib.Scan(&first))
	require.Equal(t, int32(0), lib.Scan(&second))
	assert.NotEqual(t, first, second, "every scan hands out a fresh tree")
	assert.Equal(t, 2, lib.Stats().Outstanding())

	lib.Release(first)

	_, err = lib.Memory().ReadPtr(first)
	assert.ErrorIs(t, err, ErrUseAfterRelease)

	_, err = lib.Memory().ReadPtr(second)
	assert.NoError(t, err, "releasing one tree leaves the others readable")

	lib.Release(second)
	lib.Release(second)
	lib.Release(0x42)

	stats := lib.Stats()
	assert.Equal(t, 2, stats.Scans)
	assert.Equal(t, 2, stats.Acquired)
	assert.Equal(t, 2, stats.Released)
	assert.Equal(t, 1, stats.DoubleReleases)
	assert.Equal(t, 1, stats.UnknownReleases)
	assert.Zero(t, stats.Outstanding())
}

func TestFixtureLibraryStatus(t *testing.T) {
	lib, err := OpenFixture("testdata/driver_failure.yaml")
	require.NoError(t, err)

	out := uintptr(0xabc)
	assert.Equal(t, int32(1), lib.Scan(&out))
	assert.Equal(t, uintptr(0xabc), out, "out is untouched on failure")

	stats := lib.Stats()
	assert.Equal(t, 1, stats.Scans)
	assert.Zero(t, stats.Acquired)
}

func TestFixtureLibraryReclaimsArena(t *testing.T) {
	lib, err := OpenFixture("testdata/vaapi_h264.yaml")
	require.NoError(t, err)

	var first uintptr
	require.Equal(t, int32(0), lib.Scan(&first))
	lib.Release(first)
	treeSize := lib.arena.Len()

	var root uintptr
	for i := 0; i < 10; i++ {
		require.Equal(t, int32(0), lib.Scan(&root))
		lib.Release(root)
	}
	assert.Equal(t, treeSize, lib.arena.Len(), "released trees are reclaimed")

	_, err = lib.Memory().ReadPtr(first)
	assert.ErrorIs(t, err, ErrUseAfterRelease)

	lib.Release(first)
	stats := lib.Stats()
	assert.Equal(t, 1, stats.DoubleReleases)
	assert.Zero(t, stats.UnknownReleases)
	assert.Zero(t, stats.Outstanding())
}

func TestFixtureLibraryKeepsOutstandingTrees(t *testing.T) {
	lib, err := OpenFixture("testdata/vaapi_h264.yaml")
	require.NoError(t, err)

	var held, root uintptr
	require.Equal(t, int32(0), lib.Scan(&held))
	require.Equal(t, int32(0), lib.Scan(&root))
	lib.Release(root)
	require.Equal(t, int32(0), lib.Scan(&root))

	_, err = lib.Memory().ReadPtr(held)
	assert.NoError(t, err, "no reset while a tree is outstanding")
	lib.Release(held)
	lib.Release(root)
}
