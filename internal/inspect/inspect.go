package inspect

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

// Options controls an inspection.
type Options struct {
	Checksum     ChecksumAlgorithm
	SkipChecksum bool
	Logger       hclog.Logger
}

// Report summarises one KRO file.
type Report struct {
	File         string     `json:"file,omitempty"`
	Header       kro.Header `json:"header"`
	ColorType    string     `json:"color_type"`
	FileSize     int64      `json:"file_size"`
	ExpectedSize int64      `json:"expected_size"`
	Complete     bool       `json:"complete"`
	Checksum     string     `json:"checksum,omitempty"`
	TopLeft      *Pixel     `json:"top_left,omitempty"`
	BottomRight  *Pixel     `json:"bottom_right,omitempty"`
	MiddleRow    uint32     `json:"middle_row"`
	MiddleRowOK  bool       `json:"middle_row_ok"`
}

// Pixel is one sampled pixel. Values holds the raw samples; Hex and the HSL
// triple describe its RGB part normalised to [0,1].
type Pixel struct {
	X          uint32    `json:"x"`
	Y          uint32    `json:"y"`
	Values     []float64 `json:"values"`
	Hex        string    `json:"hex"`
	Hue        float64   `json:"hue"`
	Saturation float64   `json:"saturation"`
	Lightness  float64   `json:"lightness"`
}

// InspectFile opens path and inspects it.
func InspectFile(path string, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	report, err := Inspect(f, info.Size(), opts)
	if err != nil {
		return nil, err
	}
	report.File = path
	return report, nil
}

// Inspect reads the header from r, which holds size bytes, and samples the
// pixel data. Missing pixel data is reported rather than returned as an
// error; header errors are returned.
func Inspect(r io.ReadSeeker, size int64, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	codec, err := kro.NewReadCodecWithLogger(r, logger)
	if err != nil {
		return nil, err
	}
	defer codec.Close()

	if err := codec.ReadInfo(); err != nil {
		return nil, err
	}
	h, err := codec.Header()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Header:       h,
		ColorType:    h.ColorType(),
		FileSize:     size,
		ExpectedSize: h.FileSize(),
		Complete:     size == h.FileSize(),
		MiddleRow:    h.Height / 2,
	}
	logger.Debug("📏 Inspecting image", "header", h.String(), "size", size, "expected", report.ExpectedSize)

	if !opts.SkipChecksum {
		sum, err := pixelChecksum(r, h, size, opts.Checksum)
		if err != nil {
			return nil, err
		}
		report.Checksum = sum
		logger.Debug("🔐 Pixel checksum", "checksum", sum)
	}

	report.TopLeft = samplePixel(r, h, size, 0, 0, logger)
	report.BottomRight = samplePixel(r, h, size, h.Width-1, h.Height-1, logger)

	// the row buffer is bounded by the bytes actually present
	mid := report.MiddleRow
	if h.RowOffset(mid) <= size-h.BytesPerRow() {
		row := make([]byte, h.BytesPerRow())
		if err := codec.ReadRow(row, mid); err != nil {
			logger.Warn("Middle row unreadable", "row", mid, "error", err)
		} else {
			report.MiddleRowOK = true
		}
	} else {
		logger.Warn("Middle row missing", "row", mid)
	}

	return report, nil
}

// pixelChecksum hashes the pixel bytes present in the file.
func pixelChecksum(r io.ReadSeeker, h kro.Header, size int64, algo ChecksumAlgorithm) (string, error) {
	if _, err := r.Seek(kro.DataOffset, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek to pixel data: %w", err)
	}
	n := min(h.ImageSize(), max(size-kro.DataOffset, 0))
	hasher := algo.newHash()
	if _, err := io.CopyN(hasher, r, n); err != nil {
		return "", fmt.Errorf("failed to hash pixel data: %w", err)
	}
	return formatChecksum(algo, hasher.Sum(nil)), nil
}

// samplePixel reads a single pixel straight from disk, or returns nil when
// it lies beyond the end of the file.
func samplePixel(r io.ReadSeeker, h kro.Header, size int64, x, y uint32, logger hclog.Logger) *Pixel {
	bpp := h.BytesPerPixel()
	off := h.RowOffset(y) + int64(x)*bpp
	if off < 0 || off > size-bpp {
		logger.Debug("Pixel beyond end of file", "x", x, "y", y)
		return nil
	}

	buf := make([]byte, bpp)
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		logger.Warn("Pixel seek failed", "x", x, "y", y, "error", err)
		return nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		logger.Warn("Pixel read failed", "x", x, "y", y, "error", err)
		return nil
	}

	p := &Pixel{X: x, Y: y, Values: make([]float64, h.Components)}
	bps := int(h.BytesPerSample())
	for i := range p.Values {
		s := buf[i*bps:]
		switch h.Depth {
		case kro.Depth8:
			p.Values[i] = float64(s[0])
		case kro.Depth16:
			p.Values[i] = float64(binary.BigEndian.Uint16(s))
		default:
			p.Values[i] = float64(kro.Float32(s))
		}
	}

	c := pixelColor(p.Values, h.Depth)
	p.Hex = c.Hex()
	p.Hue, p.Saturation, p.Lightness = c.Hsl()
	return p
}

// pixelColor normalises the RGB samples to [0,1].
func pixelColor(values []float64, depth uint32) colorful.Color {
	scale := 1.0
	switch depth {
	case kro.Depth8:
		scale = 255
	case kro.Depth16:
		scale = 65535
	}
	unit := func(v float64) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return v / scale
	}
	return colorful.Color{R: unit(values[0]), G: unit(values[1]), B: unit(values[2])}.Clamped()
}
