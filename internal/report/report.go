// Package report renders scan results for the command line.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shirou/gopsutil/v3/host"
	"gopkg.in/yaml.v3"

	"github.com/video-system/go-hwscan/pkg/hwscan"
)

// Host identifies the machine a scan ran on.
type Host struct {
	Hostname        string `json:"hostname" yaml:"hostname"`
	OS              string `json:"os" yaml:"os"`
	Platform        string `json:"platform,omitempty" yaml:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty" yaml:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	KernelArch      string `json:"kernel_arch,omitempty" yaml:"kernel_arch,omitempty"`
}

// Report is a scan result with the context it was taken in.
type Report struct {
	Host      Host            `json:"host" yaml:"host"`
	ScannedAt time.Time       `json:"scanned_at" yaml:"scanned_at"`
	Devices   []hwscan.Device `json:"devices" yaml:"devices"`
}

// New builds a report. Host details that cannot be read are left empty.
func New(ctx context.Context, devices []hwscan.Device, scannedAt time.Time) Report {
	r := Report{ScannedAt: scannedAt, Devices: devices}
	if info, err := host.InfoWithContext(ctx); err == nil {
		r.Host = Host{
			Hostname:        info.Hostname,
			OS:              info.OS,
			Platform:        info.Platform,
			PlatformVersion: info.PlatformVersion,
			KernelVersion:   info.KernelVersion,
			KernelArch:      info.KernelArch,
		}
	}
	return r
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// WriteTable writes one capability table per device.
func WriteTable(w io.Writer, r Report) error {
	if r.Host.Hostname != "" {
		fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render(r.Host.Hostname),
			mutedStyle.Render(strings.TrimSpace(r.Host.Platform+" "+r.Host.PlatformVersion)))
	}

	if len(r.Devices) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no hardware video devices found"))
		return err
	}

	for i := range r.Devices {
		dev := &r.Devices[i]
		if _, err := fmt.Fprintln(w, titleStyle.Render(DeviceTitle(dev))); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, deviceTable(dev).Render()); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

// DeviceTitle is a one-line description such as
// "Vaapi #0 Intel Graphics (/dev/dri/renderD128)".
func DeviceTitle(d *hwscan.Device) string {
	parts := []string{d.Driver.String()}
	if d.Ordinal != nil {
		parts = append(parts, "#"+strconv.Itoa(int(*d.Ordinal)))
	}
	if d.Name != nil {
		parts = append(parts, *d.Name)
	}
	if d.Path != nil {
		parts = append(parts, "("+*d.Path+")")
	}
	return strings.Join(parts, " ")
}

func deviceTable(d *hwscan.Device) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Codec", "Mode", "Chroma", "Depth", "Profile", "Max size", "B-frames").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, codec := range d.SortedCodecs() {
		details := d.Codecs[codec]
		for _, s := range details.DecodingSpecs {
			t.Row(codec.String(), "decode", s.Chroma.String(), s.ColorDepth.String(), "-",
				size(s.MaxWidth, s.MaxHeight), "-")
		}
		for _, s := range details.EncodingSpecs {
			t.Row(codec.String(), "encode", s.Chroma.String(), s.ColorDepth.String(), s.Profile.String(),
				size(s.MaxWidth, s.MaxHeight), s.BFramesSupported.String())
		}
	}
	return t
}

func size(w, h uint32) string {
	return fmt.Sprintf("%dx%d", w, h)
}
