package main

import (
	"encoding/binary"
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

// gradientLevel spreads v over the full 16-bit range across n steps, so a
// 256-wide image gets v*257.
func gradientLevel(v, n uint32) uint16 {
	if n <= 1 {
		return 0
	}
	return uint16(uint64(v) * math.MaxUint16 / uint64(n-1))
}

// gradientRow fills row y of the test image: red rises with x, green with
// y, blue is zero and alpha opaque. Samples are in native order.
func gradientRow(row []byte, h kro.Header, y uint32) {
	bps := int(h.BytesPerSample())
	components := int(h.Components)
	g := gradientLevel(y, h.Height)
	for x := uint32(0); x < h.Width; x++ {
		values := [4]uint16{gradientLevel(x, h.Width), g, 0, math.MaxUint16}
		for i := 0; i < components; i++ {
			s := row[(int(x)*components+i)*bps:]
			switch h.Depth {
			case kro.Depth8:
				s[0] = uint8(values[i] >> 8)
			case kro.Depth16:
				binary.NativeEndian.PutUint16(s, values[i])
			default:
				binary.NativeEndian.PutUint32(s, math.Float32bits(float32(values[i])/math.MaxUint16))
			}
		}
	}
}

// writeGradient writes the test image row by row, bottom-up when reverse
// is set.
func writeGradient(c *kro.Codec, h kro.Header, reverse bool, logger hclog.Logger) error {
	if err := c.SetHeader(h.Width, h.Height, h.Depth, h.Components); err != nil {
		return err
	}
	if err := c.WriteInfo(); err != nil {
		return err
	}

	row := make([]byte, h.BytesPerRow())
	for i := uint32(0); i < h.Height; i++ {
		y := i
		if reverse {
			y = h.Height - 1 - i
		}
		gradientRow(row, h, y)
		if err := c.WriteRow(row, y); err != nil {
			return err
		}
	}
	logger.Debug("Gradient written", "header", h.String(), "reverse", reverse)
	return nil
}
