package kro

import (
	"fmt"
	"io"
)

// WriteInfo writes the 20-byte header at the stream's current position,
// normally the start. On success pixel operations become legal.
func (c *Codec) WriteInfo() error {
	const op = "WriteInfo"
	if err := c.check(op, ModeWrite); err != nil {
		return err
	}
	if !c.headerSet {
		return invalidArg(op, "header fields not set")
	}

	if err := writeFull(c.ws, c.header.Pack()); err != nil {
		return newError(op, ErrIO, err)
	}

	c.headerValid = true
	c.logger.Debug("wrote header",
		"width", c.header.Width,
		"height", c.header.Height,
		"depth", c.header.Depth,
		"components", c.header.Components,
	)
	return nil
}

// WriteRow writes one row at its absolute position. Rows may be written in
// any order and rewritten; rows never written are left as the stream holds
// them. row holds host-order samples and must be exactly BytesPerRow long.
func (c *Codec) WriteRow(row []byte, rowIndex uint32) error {
	const op = "WriteRow"
	if err := c.checkPixels(op, ModeWrite); err != nil {
		return err
	}
	if err := c.checkRow(op, rowIndex, len(row)); err != nil {
		return err
	}

	offset := c.header.RowOffset(rowIndex)
	c.logger.Trace("writing row", "row", rowIndex, "offset", offset)
	if err := c.seek(offset); err != nil {
		return newError(op, ErrIO, fmt.Errorf("seek to %d: %w", offset, err))
	}
	if err := c.writeRow(row); err != nil {
		return newError(op, ErrIO, fmt.Errorf("row %d: %w", rowIndex, err))
	}
	return nil
}

// WriteImage writes all rows in order after a single seek to the data
// offset. The first failing row aborts the call; earlier rows stay written.
func (c *Codec) WriteImage(data []byte) error {
	const op = "WriteImage"
	if err := c.checkPixels(op, ModeWrite); err != nil {
		return err
	}
	if err := c.checkImage(op, len(data)); err != nil {
		return err
	}

	if err := c.seek(c.dataOffset); err != nil {
		return newError(op, ErrIO, fmt.Errorf("seek to %d: %w", c.dataOffset, err))
	}

	stride := int(c.header.BytesPerRow())
	for y := 0; y < int(c.header.Height); y++ {
		if err := c.writeRow(data[y*stride : (y+1)*stride]); err != nil {
			return newError(op, ErrIO, fmt.Errorf("row %d: %w", y, err))
		}
	}

	c.logger.Debug("wrote image", "rows", c.header.Height, "bytes", len(data))
	return nil
}

// writeRow encodes row into big-endian order and writes it at the current
// position.
func (c *Codec) writeRow(row []byte) error {
	if c.header.Depth == Depth8 {
		return writeFull(c.ws, row)
	}
	if len(c.scratch) != len(row) {
		c.scratch = make([]byte, len(row))
	}
	transcodeRow(toDisk, c.header.Depth, c.scratch, row)
	return writeFull(c.ws, c.scratch)
}

func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}
