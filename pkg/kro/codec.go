package kro

import (
	"io"
	"math"

	"github.com/hashicorp/go-hclog"
)

// Mode is fixed when a Codec is created.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Codec reads or writes one KRO image over a caller-owned stream.
//
// The stream is borrowed: Close releases the Codec's own state and never
// closes the stream. A Codec must not be used from several goroutines at once.
type Codec struct {
	rs     io.ReadSeeker
	ws     io.WriteSeeker
	mode   Mode
	logger hclog.Logger

	header      Header
	headerSet   bool // populated by SetHeader
	headerValid bool // read, or set and written
	dataOffset  int64

	scratch []byte
	closed  bool
}

// NewWriteCodec creates a write-mode Codec bound to w.
func NewWriteCodec(w io.WriteSeeker) (*Codec, error) {
	return NewWriteCodecWithLogger(w, hclog.NewNullLogger())
}

// NewWriteCodecWithLogger creates a write-mode Codec with a custom logger
func NewWriteCodecWithLogger(w io.WriteSeeker, logger hclog.Logger) (*Codec, error) {
	if w == nil {
		return nil, invalidArg("NewWriteCodec", "nil stream")
	}
	return newCodec(ModeWrite, nil, w, logger), nil
}

// NewReadCodec creates a read-mode Codec bound to r.
func NewReadCodec(r io.ReadSeeker) (*Codec, error) {
	return NewReadCodecWithLogger(r, hclog.NewNullLogger())
}

// NewReadCodecWithLogger creates a read-mode Codec with a custom logger
func NewReadCodecWithLogger(r io.ReadSeeker, logger hclog.Logger) (*Codec, error) {
	if r == nil {
		return nil, invalidArg("NewReadCodec", "nil stream")
	}
	return newCodec(ModeRead, r, nil, logger), nil
}

func newCodec(mode Mode, r io.ReadSeeker, w io.WriteSeeker, logger hclog.Logger) *Codec {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Codec{
		rs:         r,
		ws:         w,
		mode:       mode,
		logger:     logger,
		dataOffset: DataOffset,
	}
}

// Mode reports whether the Codec reads or writes.
func (c *Codec) Mode() Mode {
	return c.mode
}

// Close releases the Codec. It is a no-op on a nil or closed Codec and does
// not close or flush the bound stream.
func (c *Codec) Close() {
	if c == nil || c.closed {
		return
	}
	c.logger.Trace("releasing codec", "mode", c.mode)
	c.rs = nil
	c.ws = nil
	c.scratch = nil
	c.header = Header{}
	c.headerSet = false
	c.headerValid = false
	c.closed = true
}

// SetHeader stores the image geometry for a later WriteInfo.
func (c *Codec) SetHeader(width, height, depth, components uint32) error {
	const op = "SetHeader"
	if err := c.check(op, ModeWrite); err != nil {
		return err
	}
	h := Header{Width: width, Height: height, Depth: depth, Components: components}
	if err := h.Validate(); err != nil {
		return newError(op, ErrInvalidArgument, err)
	}
	c.header = h
	c.headerSet = true
	return nil
}

// Header returns the established header. It fails until the header has been
// read, or set and written.
func (c *Codec) Header() (Header, error) {
	const op = "Header"
	if c == nil || c.closed {
		return Header{}, invalidArg(op, "codec is closed")
	}
	if !c.headerValid {
		return Header{}, invalidArg(op, "header not established")
	}
	return c.header, nil
}

// check validates the handle and its mode.
func (c *Codec) check(op string, mode Mode) error {
	if c == nil || c.closed {
		return invalidArg(op, "codec is closed")
	}
	if c.mode != mode {
		return invalidArg(op, "codec is in %s mode", c.mode)
	}
	return nil
}

// checkPixels additionally requires an established header.
func (c *Codec) checkPixels(op string, mode Mode) error {
	if err := c.check(op, mode); err != nil {
		return err
	}
	if !c.headerValid {
		return invalidArg(op, "header not established")
	}
	return nil
}

// checkRow validates a row index and a row buffer length.
func (c *Codec) checkRow(op string, rowIndex uint32, n int) error {
	if rowIndex >= c.header.Height {
		return invalidArg(op, "row %d out of range [0,%d)", rowIndex, c.header.Height)
	}
	if int64(n) != c.header.BytesPerRow() {
		return invalidArg(op, "row buffer is %d bytes, need %d", n, c.header.BytesPerRow())
	}
	if c.header.RowOffset(rowIndex) == math.MaxInt64 {
		return invalidArg(op, "row %d offset overflows", rowIndex)
	}
	return nil
}

// checkImage validates a whole-image buffer length.
func (c *Codec) checkImage(op string, n int) error {
	size := c.header.ImageSize()
	if size == math.MaxInt64 || int64(n) != size {
		return invalidArg(op, "image buffer is %d bytes, need %d", n, size)
	}
	return nil
}

func (c *Codec) seek(offset int64) error {
	var s io.Seeker = c.rs
	if c.mode == ModeWrite {
		s = c.ws
	}
	_, err := s.Seek(offset, io.SeekStart)
	return err
}
