package kro

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// Header describes the geometry of a KRO image.
type Header struct {
	Width      uint32 `json:"width"`
	Height     uint32 `json:"height"`
	Depth      uint32 `json:"depth"`      // bits per sample: 8, 16 or 32
	Components uint32 `json:"components"` // 3=RGB, 4=RGBA
}

// Validate checks the header against the format rules.
func (h Header) Validate() error {
	if h.Depth != Depth8 && h.Depth != Depth16 && h.Depth != Depth32 {
		return fmt.Errorf("depth %d not one of 8, 16, 32", h.Depth)
	}
	if h.Components != ComponentsRGB && h.Components != ComponentsRGBA {
		return fmt.Errorf("components %d not one of 3, 4", h.Components)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("zero dimension %dx%d", h.Width, h.Height)
	}
	return nil
}

// BytesPerSample returns depth/8.
func (h Header) BytesPerSample() int64 {
	return int64(h.Depth / 8)
}

// BytesPerPixel returns (depth/8) * components.
func (h Header) BytesPerPixel() int64 {
	return h.BytesPerSample() * int64(h.Components)
}

// BytesPerRow returns the row stride in bytes.
func (h Header) BytesPerRow() int64 {
	return h.BytesPerPixel() * int64(h.Width)
}

// ImageSize returns height * BytesPerRow, saturating at math.MaxInt64.
func (h Header) ImageSize() int64 {
	return mulSat(int64(h.Height), h.BytesPerRow())
}

// FileSize returns the exact size of a complete file with this header.
func (h Header) FileSize() int64 {
	size := h.ImageSize()
	if size > math.MaxInt64-DataOffset {
		return math.MaxInt64
	}
	return DataOffset + size
}

// RowOffset returns the absolute file offset of row r, saturating at
// math.MaxInt64.
func (h Header) RowOffset(r uint32) int64 {
	off := mulSat(int64(r), h.BytesPerRow())
	if off > math.MaxInt64-DataOffset {
		return math.MaxInt64
	}
	return DataOffset + off
}

// ColorType returns "RGB", "RGBA" or "Unknown".
func (h Header) ColorType() string {
	switch h.Components {
	case ComponentsRGB:
		return "RGB"
	case ComponentsRGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}

func (h Header) String() string {
	return fmt.Sprintf("%dx%d %d-bit %s", h.Width, h.Height, h.Depth, h.ColorType())
}

// Pack serializes the header to its 20-byte on-disk form.
func (h Header) Pack() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:3], Magic)
	buf[3] = Version
	binary.BigEndian.PutUint32(buf[4:8], h.Width)
	binary.BigEndian.PutUint32(buf[8:12], h.Height)
	binary.BigEndian.PutUint32(buf[12:16], h.Depth)
	binary.BigEndian.PutUint32(buf[16:20], h.Components)
	return buf
}

// Unpack parses a 20-byte header block.
func Unpack(data []byte) (Header, error) {
	const op = "Unpack"
	if len(data) < HeaderSize {
		return Header{}, newError(op, ErrFormat, fmt.Errorf("header is %d bytes, need %d", len(data), HeaderSize))
	}
	if err := checkMagic(data[0:3]); err != nil {
		return Header{}, newError(op, ErrFormat, err)
	}
	if err := checkVersion(data[3]); err != nil {
		return Header{}, newError(op, ErrUnsupportedVersion, err)
	}
	h := unpackFields(data[4:HeaderSize])
	if err := h.Validate(); err != nil {
		return Header{}, newError(op, ErrFormat, err)
	}
	return h, nil
}

func checkMagic(b []byte) error {
	if string(b) != Magic {
		return fmt.Errorf("magic %q", b)
	}
	return nil
}

func checkVersion(v byte) error {
	if v != Version {
		return fmt.Errorf("version %d, reader supports %d", v, Version)
	}
	return nil
}

// unpackFields decodes width, height, depth and components in that order.
func unpackFields(b []byte) Header {
	return Header{
		Width:      binary.BigEndian.Uint32(b[0:4]),
		Height:     binary.BigEndian.Uint32(b[4:8]),
		Depth:      binary.BigEndian.Uint32(b[8:12]),
		Components: binary.BigEndian.Uint32(b[12:16]),
	}
}

func mulSat(a, b int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(lo)
}
