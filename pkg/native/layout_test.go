package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate64(t *testing.T) {
	l := NewLayout(8)

	tests := []struct {
		info    Info
		size    uintptr
		align   uintptr
		offsets map[string]uintptr
	}{
		{l.Devices, 16, 8, map[string]uintptr{
			FieldDevices: 0, FieldNumDevices: 8,
		}},
		{l.Device, 40, 8, map[string]uintptr{
			FieldDriver: 0, FieldOrdinal: 4, FieldPath: 8, FieldName: 16, FieldCodecs: 24, FieldNumCodecs: 32,
		}},
		{l.CodecDetails, 40, 8, map[string]uintptr{
			FieldCodec: 0, FieldDecodingSpecs: 8, FieldNumDecodingSpecs: 16, FieldEncodingSpecs: 24, FieldNumEncodingSpecs: 32,
		}},
		{l.DecodingSpec, 16, 4, map[string]uintptr{
			FieldChroma: 0, FieldColorDepth: 4, FieldMaxWidth: 8, FieldMaxHeight: 12,
		}},
		{l.EncodingSpec, 24, 4, map[string]uintptr{
			FieldChroma: 0, FieldColorDepth: 4, FieldProfile: 8, FieldMaxWidth: 12, FieldMaxHeight: 16, FieldBFramesSupported: 20,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.info.Name, func(t *testing.T) {
			assert.Equal(t, tc.size, tc.info.Size, "size")
			assert.Equal(t, tc.align, tc.info.Align, "align")
			for name, off := range tc.offsets {
				assert.Equal(t, off, tc.info.Off(name), "offset of %s", name)
			}
		})
	}
}

func TestCalculate32(t *testing.T) {
	l := NewLayout(4)

	assert.Equal(t, uintptr(8), l.Devices.Size)
	assert.Equal(t, uintptr(24), l.Device.Size)
	assert.Equal(t, uintptr(8), l.Device.Off(FieldPath))
	assert.Equal(t, uintptr(20), l.Device.Off(FieldNumCodecs))
	assert.Equal(t, uintptr(20), l.CodecDetails.Size)
	assert.Equal(t, uintptr(24), l.EncodingSpec.Size)
}

func TestInfoAt(t *testing.T) {
	l := NewLayout(8)
	assert.Equal(t, uintptr(0x1000+2*40), l.Device.At(0x1000, 2))
}

func TestOffUnknownFieldPanics(t *testing.T) {
	require.Panics(t, func() { NewLayout(8).Device.Off("nope") })
}

func TestHostLayoutMatchesPointerSize(t *testing.T) {
	assert.Contains(t, []uintptr{4, 8}, Host.PtrSize)
	assert.Len(t, Host.Records(), 5)
}
