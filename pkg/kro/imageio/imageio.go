// Package imageio converts between image.Image and KRO files.
//
// Importing the package registers the "kro" format with the image package,
// so image.Decode and image.DecodeConfig recognise KRO files.
package imageio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

func init() {
	image.RegisterFormat("kro", kro.Magic, Decode, DecodeConfig)
}

// Options controls how Encode lays out samples.
type Options struct {
	Depth      uint32 // 8, 16 or 32
	Components uint32 // 3 drops alpha, 4 keeps it
	Logger     hclog.Logger
}

// DefaultOptions writes 8-bit RGBA.
var DefaultOptions = Options{Depth: kro.Depth8, Components: kro.ComponentsRGBA}

// Encode writes img to w as a KRO image, one row at a time.
//
// Samples are non-premultiplied. 8-bit output uses the image's 8-bit
// channels; 16-bit output uses 16-bit channels; 32-bit output stores 16-bit
// channels scaled to [0,1]. A nil opts means DefaultOptions.
func Encode(w io.WriteSeeker, img image.Image, opts *Options) error {
	o := DefaultOptions
	if opts != nil {
		o = *opts
	}

	b := img.Bounds()
	c, err := kro.NewWriteCodecWithLogger(w, o.Logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetHeader(uint32(b.Dx()), uint32(b.Dy()), o.Depth, o.Components); err != nil {
		return err
	}
	if err := c.WriteInfo(); err != nil {
		return err
	}

	h, err := c.Header()
	if err != nil {
		return err
	}

	var nrgba *image.NRGBA
	if h.Depth == kro.Depth8 {
		nrgba = imaging.Clone(img)
	}

	row := make([]byte, h.BytesPerRow())
	for y := 0; y < b.Dy(); y++ {
		if nrgba != nil {
			fillRow8(row, nrgba, y, int(h.Components))
		} else {
			fillRowWide(row, img, b.Min.X, b.Min.Y+y, b.Dx(), h)
		}
		if err := c.WriteRow(row, uint32(y)); err != nil {
			return err
		}
	}
	return nil
}

// fillRow8 copies row y of a zero-based NRGBA image.
func fillRow8(row []byte, img *image.NRGBA, y, components int) {
	src := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
	for x := 0; x < img.Rect.Dx(); x++ {
		copy(row[x*components:x*components+components], src[x*4:x*4+components])
	}
}

// fillRowWide writes 16-bit or float samples for one source row.
func fillRowWide(row []byte, img image.Image, minX, y, width int, h kro.Header) {
	bps := int(h.BytesPerSample())
	components := int(h.Components)
	for x := 0; x < width; x++ {
		c := color.NRGBA64Model.Convert(img.At(minX+x, y)).(color.NRGBA64)
		values := [4]uint16{c.R, c.G, c.B, c.A}
		for i := 0; i < components; i++ {
			off := (x*components + i) * bps
			if h.Depth == kro.Depth16 {
				binary.NativeEndian.PutUint16(row[off:], values[i])
			} else {
				f := float32(values[i]) / math.MaxUint16
				binary.NativeEndian.PutUint32(row[off:], math.Float32bits(f))
			}
		}
	}
}

// Decode reads a KRO image. 8-bit images decode to *image.NRGBA, 16- and
// 32-bit images to *image.NRGBA64 with floats clamped to [0,1]. RGB images
// get opaque alpha.
//
// Readers that cannot seek are buffered in memory, up to the size the header
// declares. Seekable readers must be positioned at the start of the file.
// Nothing is allocated for pixels until the stream is known to hold them.
func Decode(r io.Reader) (image.Image, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}
	available, err := remaining(rs)
	if err != nil {
		return nil, err
	}
	c, err := kro.NewReadCodec(rs)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.ReadInfo(); err != nil {
		return nil, err
	}
	h, err := c.Header()
	if err != nil {
		return nil, err
	}
	if available < h.FileSize() {
		return nil, fmt.Errorf("decoding KRO %s: %d of %d bytes present: %w: %w",
			h, available, h.FileSize(), kro.ErrIO, io.ErrUnexpectedEOF)
	}
	if err := checkDimensions(h); err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, int(h.Width), int(h.Height))
	row := make([]byte, h.BytesPerRow())

	if h.Depth == kro.Depth8 {
		img := image.NewNRGBA(rect)
		for y := 0; y < int(h.Height); y++ {
			if err := c.ReadRow(row, uint32(y)); err != nil {
				return nil, err
			}
			decodeRow8(img, y, row, int(h.Components))
		}
		return img, nil
	}

	img := image.NewNRGBA64(rect)
	for y := 0; y < int(h.Height); y++ {
		if err := c.ReadRow(row, uint32(y)); err != nil {
			return nil, err
		}
		decodeRowWide(img, y, row, h)
	}
	return img, nil
}

func decodeRow8(img *image.NRGBA, y int, row []byte, components int) {
	dst := img.Pix[y*img.Stride:]
	for x := 0; x < img.Rect.Dx(); x++ {
		copy(dst[x*4:x*4+3], row[x*components:x*components+3])
		if components == kro.ComponentsRGBA {
			dst[x*4+3] = row[x*components+3]
		} else {
			dst[x*4+3] = 0xff
		}
	}
}

func decodeRowWide(img *image.NRGBA64, y int, row []byte, h kro.Header) {
	bps := int(h.BytesPerSample())
	components := int(h.Components)
	for x := 0; x < int(h.Width); x++ {
		values := [4]uint16{0, 0, 0, math.MaxUint16}
		for i := 0; i < components; i++ {
			off := (x*components + i) * bps
			if h.Depth == kro.Depth16 {
				values[i] = binary.NativeEndian.Uint16(row[off:])
			} else {
				values[i] = unitToUint16(math.Float32frombits(binary.NativeEndian.Uint32(row[off:])))
			}
		}
		img.SetNRGBA64(x, y, color.NRGBA64{R: values[0], G: values[1], B: values[2], A: values[3]})
	}
}

// unitToUint16 maps [0,1] onto [0,65535]. NaN maps to 0.
func unitToUint16(f float32) uint16 {
	switch {
	case math.IsNaN(float64(f)) || f <= 0:
		return 0
	case f >= 1:
		return math.MaxUint16
	default:
		return uint16(math.Round(float64(f) * math.MaxUint16))
	}
}

// DecodeConfig reads only the header.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf := make([]byte, kro.HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return image.Config{}, fmt.Errorf("reading KRO header: %w", err)
	}
	h, err := kro.Unpack(buf)
	if err != nil {
		return image.Config{}, err
	}

	model := color.NRGBA64Model
	if h.Depth == kro.Depth8 {
		model = color.NRGBAModel
	}
	return image.Config{
		ColorModel: model,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// checkDimensions rejects images whose 64-bit-per-pixel form would not fit
// in an int, as image.NewNRGBA64 would panic on them.
func checkDimensions(h kro.Header) error {
	if uint64(h.Width)*uint64(h.Height) > math.MaxInt/8 ||
		uint64(h.Width) > math.MaxInt || uint64(h.Height) > math.MaxInt {
		return fmt.Errorf("decoding KRO %s: %w: dimensions too large", h, kro.ErrFormat)
	}
	return nil
}

// remaining returns the bytes left between the current position and the end
// of rs, leaving the position unchanged.
func remaining(rs io.ReadSeeker) (int64, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("sizing KRO stream: %w: %w", kro.ErrIO, err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("sizing KRO stream: %w: %w", kro.ErrIO, err)
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("sizing KRO stream: %w: %w", kro.ErrIO, err)
	}
	return end - start, nil
}

// asReadSeeker buffers a non-seekable reader. Only the header and as many
// bytes as it declares are read; trailing data is left in r.
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	head := make([]byte, kro.HeaderSize)
	n, err := io.ReadFull(r, head)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		// ReadInfo reports the short header
		return bytes.NewReader(head[:n]), nil
	case err != nil:
		return nil, fmt.Errorf("buffering KRO stream: %w", err)
	}

	h, err := kro.Unpack(head)
	if err != nil {
		// ReadInfo reports the bad header with its kind
		return bytes.NewReader(head), nil
	}

	// the buffer grows with the bytes actually present, not the declared size
	var buf bytes.Buffer
	buf.Write(head)
	if _, err := buf.ReadFrom(io.LimitReader(r, h.FileSize()-kro.HeaderSize)); err != nil {
		return nil, fmt.Errorf("buffering KRO stream: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}
