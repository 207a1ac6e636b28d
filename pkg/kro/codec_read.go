package kro

import (
	"fmt"
	"io"
)

// ReadInfo reads and validates the header at the stream's current position.
//
// A wrong magic or an invalid geometry yields ErrFormat. A correct magic with
// an unknown version yields ErrUnsupportedVersion. A short read yields ErrIO.
func (c *Codec) ReadInfo() error {
	const op = "ReadInfo"
	if err := c.check(op, ModeRead); err != nil {
		return err
	}

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(c.rs, buf[0:3]); err != nil {
		return newError(op, ErrIO, fmt.Errorf("reading magic: %w", err))
	}
	if err := checkMagic(buf[0:3]); err != nil {
		return newError(op, ErrFormat, err)
	}

	if _, err := io.ReadFull(c.rs, buf[3:4]); err != nil {
		return newError(op, ErrIO, fmt.Errorf("reading version: %w", err))
	}
	if err := checkVersion(buf[3]); err != nil {
		return newError(op, ErrUnsupportedVersion, err)
	}

	if _, err := io.ReadFull(c.rs, buf[4:]); err != nil {
		return newError(op, ErrIO, fmt.Errorf("reading header fields: %w", err))
	}
	h := unpackFields(buf[4:])
	if err := h.Validate(); err != nil {
		return newError(op, ErrFormat, err)
	}

	c.header = h
	c.headerValid = true
	c.logger.Debug("read header",
		"width", h.Width,
		"height", h.Height,
		"depth", h.Depth,
		"components", h.Components,
	)
	return nil
}

// ReadRow reads row rowIndex into buf as host-order samples. buf must be
// exactly BytesPerRow long.
func (c *Codec) ReadRow(buf []byte, rowIndex uint32) error {
	const op = "ReadRow"
	if err := c.checkPixels(op, ModeRead); err != nil {
		return err
	}
	if err := c.checkRow(op, rowIndex, len(buf)); err != nil {
		return err
	}

	offset := c.header.RowOffset(rowIndex)
	c.logger.Trace("reading row", "row", rowIndex, "offset", offset)
	if err := c.seek(offset); err != nil {
		return newError(op, ErrIO, fmt.Errorf("seek to %d: %w", offset, err))
	}
	if err := c.readRow(buf); err != nil {
		return newError(op, ErrIO, fmt.Errorf("row %d: %w", rowIndex, err))
	}
	return nil
}

// ReadImage reads all rows in order after a single seek to the data offset.
// On failure the contents of buf past the failed row are undefined.
func (c *Codec) ReadImage(buf []byte) error {
	const op = "ReadImage"
	if err := c.checkPixels(op, ModeRead); err != nil {
		return err
	}
	if err := c.checkImage(op, len(buf)); err != nil {
		return err
	}

	if err := c.seek(c.dataOffset); err != nil {
		return newError(op, ErrIO, fmt.Errorf("seek to %d: %w", c.dataOffset, err))
	}

	stride := int(c.header.BytesPerRow())
	for y := 0; y < int(c.header.Height); y++ {
		if err := c.readRow(buf[y*stride : (y+1)*stride]); err != nil {
			return newError(op, ErrIO, fmt.Errorf("row %d: %w", y, err))
		}
	}

	c.logger.Debug("read image", "rows", c.header.Height, "bytes", len(buf))
	return nil
}

// readRow reads one row at the current position and decodes it in place.
func (c *Codec) readRow(buf []byte) error {
	if _, err := io.ReadFull(c.rs, buf); err != nil {
		return err
	}
	transcodeRow(fromDisk, c.header.Depth, buf, buf)
	return nil
}
