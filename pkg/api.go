// Package pkg offers one-call helpers over the KRO codec for whole files.
package pkg

import (
	"fmt"
	"os"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

// WriteFile writes a complete KRO image to path, creating or truncating it
// with perm. data holds the pixels in native sample order.
func WriteFile(path string, hdr kro.Header, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	c, err := kro.NewWriteCodec(f)
	if err != nil {
		f.Close()
		return err
	}
	defer c.Close()

	if err := writeImage(c, hdr, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeImage(c *kro.Codec, hdr kro.Header, data []byte) error {
	if err := c.SetHeader(hdr.Width, hdr.Height, hdr.Depth, hdr.Components); err != nil {
		return err
	}
	if err := c.WriteInfo(); err != nil {
		return err
	}
	return c.WriteImage(data)
}

// ReadFile reads a complete KRO image from path. The pixels come back in
// native sample order.
func ReadFile(path string) (kro.Header, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return kro.Header{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	c, err := kro.NewReadCodec(f)
	if err != nil {
		return kro.Header{}, nil, err
	}
	defer c.Close()

	if err := c.ReadInfo(); err != nil {
		return kro.Header{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	h, err := c.Header()
	if err != nil {
		return kro.Header{}, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		return kro.Header{}, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	// allocate only what the file can actually hold
	if info.Size() < h.FileSize() {
		return h, nil, fmt.Errorf("%s: %w: %d of %d bytes", path, ErrIncomplete, info.Size(), h.FileSize())
	}

	data := make([]byte, h.ImageSize())
	if err := c.ReadImage(data); err != nil {
		return h, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return h, data, nil
}
