package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/video-system/go-hwscan/pkg/hwscan"
)

func sampleReport() Report {
	path := "/dev/dri/renderD128"
	name := "Intel Graphics"
	ordinal := uint8(0)

	return Report{
		Host:      Host{Hostname: "edge-01", OS: "linux", Platform: "ubuntu", PlatformVersion: "24.04"},
		ScannedAt: time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC),
		Devices: []hwscan.Device{{
			Driver:  hwscan.DriverVaapi,
			Ordinal: &ordinal,
			Path:    &path,
			Name:    &name,
			Codecs: map[hwscan.Codec]hwscan.CodecDetails{
				hwscan.CodecH264: {
					Codec: hwscan.CodecH264,
					DecodingSpecs: []hwscan.DecodingSpec{
						{Chroma: hwscan.ChromaYuv420, ColorDepth: hwscan.ColorDepthBit8, MaxWidth: 1920, MaxHeight: 1080},
					},
					EncodingSpecs: []hwscan.EncodingSpec{
						{Chroma: hwscan.ChromaYuv420, ColorDepth: hwscan.ColorDepthBit8, Profile: hwscan.ProfileHigh,
							MaxWidth: 1920, MaxHeight: 1080, BFramesSupported: hwscan.TristateTrue},
					},
				},
			},
		}},
	}
}

func TestNew(t *testing.T) {
	at := time.Now()
	r := New(context.Background(), nil, at)
	assert.Equal(t, at, r.ScannedAt)
	assert.Empty(t, r.Devices)
}

func TestDeviceTitle(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "Vaapi #0 Intel Graphics (/dev/dri/renderD128)", DeviceTitle(&r.Devices[0]))

	assert.Equal(t, "Nvidia", DeviceTitle(&hwscan.Device{Driver: hwscan.DriverNvidia}))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "edge-01")
	assert.Contains(t, out, "Intel Graphics")
	assert.Contains(t, out, "H264")
	assert.Contains(t, out, "decode")
	assert.Contains(t, out, "encode")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "1920x1080")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, Report{}))
	assert.Contains(t, buf.String(), "no hardware video devices found")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sampleReport(), back)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleReport()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	devices := doc["devices"].([]any)
	require.Len(t, devices, 1)
	dev := devices[0].(map[string]any)
	assert.Equal(t, "Vaapi", dev["driver"])

	h264 := dev["codecs"].(map[string]any)["H264"].(map[string]any)
	enc := h264["encodingSpecs"].([]any)[0].(map[string]any)
	assert.Equal(t, "High", enc["profile"])
	assert.Equal(t, true, enc["bFramesSupported"])
}
