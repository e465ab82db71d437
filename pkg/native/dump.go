package native

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes the raw tree at root to w, one field per line with codes
// left as numbers. It reads through mem exactly like the marshaller and
// stops at the first unreadable field.
func Dump(w io.Writer, mem Memory, l *Layout, root uintptr) error {
	d := dumper{w: w, mem: mem, layout: l}
	return d.record(l.Devices, root, 0)
}

type dumper struct {
	w      io.Writer
	mem    Memory
	layout *Layout
}

// children maps an array pointer field to its count field and element record.
func (d *dumper) children(field string) (count string, elem Info, ok bool) {
	switch field {
	case FieldDevices:
		return FieldNumDevices, d.layout.Device, true
	case FieldCodecs:
		return FieldNumCodecs, d.layout.CodecDetails, true
	case FieldDecodingSpecs:
		return FieldNumDecodingSpecs, d.layout.DecodingSpec, true
	case FieldEncodingSpecs:
		return FieldNumEncodingSpecs, d.layout.EncodingSpec, true
	}
	return "", Info{}, false
}

func (d *dumper) printf(depth int, format string, args ...any) error {
	_, err := fmt.Fprintf(d.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
	return err
}

func (d *dumper) record(info Info, addr uintptr, depth int) error {
	if err := d.printf(depth, "%s @0x%x {", info.Name, addr); err != nil {
		return err
	}

	for _, f := range info.Fields {
		at := addr + info.Off(f.Name)
		if err := d.field(info, f, at, addr, depth+1); err != nil {
			return fmt.Errorf("%s.%s: %w", info.Name, f.Name, err)
		}
	}

	return d.printf(depth, "}")
}

func (d *dumper) field(info Info, f Field, at, base uintptr, depth int) error {
	switch f.Kind {
	case U8:
		v, err := d.mem.ReadU8(at)
		if err != nil {
			return err
		}
		return d.printf(depth, "%s: %d", f.Name, v)
	case I32:
		v, err := d.mem.ReadI32(at)
		if err != nil {
			return err
		}
		return d.printf(depth, "%s: %d", f.Name, v)
	case U32:
		v, err := d.mem.ReadU32(at)
		if err != nil {
			return err
		}
		return d.printf(depth, "%s: %d", f.Name, v)
	}

	p, err := d.mem.ReadPtr(at)
	if err != nil {
		return err
	}

	countField, elem, isArray := d.children(f.Name)
	if !isArray {
		if p == 0 {
			return d.printf(depth, "%s: null", f.Name)
		}
		s, err := d.mem.ReadCString(p)
		if err != nil {
			return err
		}
		return d.printf(depth, "%s: %s", f.Name, strconv.Quote(string(s)))
	}

	n, err := d.mem.ReadU32(base + info.Off(countField))
	if err != nil {
		return err
	}
	if n == 0 {
		return d.printf(depth, "%s: [] @0x%x", f.Name, p)
	}
	if p == 0 {
		return d.printf(depth, "%s: <null with %d elements>", f.Name, n)
	}

	if err := d.printf(depth, "%s: [", f.Name); err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		if err := d.record(elem, elem.At(p, i), depth+1); err != nil {
			return err
		}
	}
	return d.printf(depth, "]")
}
