package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

// Format selects a report encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatCBOR    Format = "cbor"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the accepted encodings.
var Formats = []Format{FormatText, FormatJSON, FormatCBOR, FormatMsgpack}

// ParseFormat maps a name to its Format.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format: %s", name)
}

// Encode writes the report to w. JSON cannot carry NaN or infinite
// samples; use CBOR or MessagePack for such images.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatText:
		return r.writeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatCBOR:
		// deterministic so equal reports encode to equal bytes
		em, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return err
		}
		return em.NewEncoder(w).Encode(r)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

func (r *Report) writeText(w io.Writer) error {
	var b strings.Builder
	h := r.Header

	b.WriteString("KRO Image Info:\n")
	if r.File != "" {
		fmt.Fprintf(&b, "  File: %s\n", r.File)
	}
	fmt.Fprintf(&b, "  Width: %d\n", h.Width)
	fmt.Fprintf(&b, "  Height: %d\n", h.Height)
	fmt.Fprintf(&b, "  Bit depth per channel: %d\n", h.Depth)
	fmt.Fprintf(&b, "  Color components: %d (%s)\n", h.Components, r.ColorType)
	fmt.Fprintf(&b, "  File size: %d bytes (expected %d)\n", r.FileSize, r.ExpectedSize)
	if r.Checksum != "" {
		fmt.Fprintf(&b, "  Pixel checksum: %s\n", r.Checksum)
	}

	b.WriteString("\nSample pixels (row-major, top-left origin):\n")
	writePixel(&b, "Top-left", r.TopLeft, h.Depth)
	writePixel(&b, "Bottom-right", r.BottomRight, h.Depth)

	if r.MiddleRowOK {
		fmt.Fprintf(&b, "\nSuccessfully read middle row (%d)\n", r.MiddleRow)
	} else {
		fmt.Fprintf(&b, "\nCould not read middle row (%d)\n", r.MiddleRow)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writePixel(b *strings.Builder, label string, p *Pixel, depth uint32) {
	if p == nil {
		fmt.Fprintf(b, "  %s: missing\n", label)
		return
	}
	fmt.Fprintf(b, "  %s (%d,%d): ", label, p.X, p.Y)
	for _, v := range p.Values {
		if depth == kro.Depth32 {
			fmt.Fprintf(b, "%.3f ", v)
		} else {
			fmt.Fprintf(b, "%d ", int64(v))
		}
	}
	fmt.Fprintf(b, "[%s hsl(%.0f, %.0f%%, %.0f%%)]\n", p.Hex, p.Hue, p.Saturation*100, p.Lightness*100)
}
