package kro

import (
	"errors"
	"io"
)

// memFile is an in-memory io.ReadWriteSeeker that grows on write like a
// freshly created file: gaps are zero-filled.
type memFile struct {
	data []byte
	pos  int64
}

func newMemFile(data []byte) *memFile {
	return &memFile{data: append([]byte(nil), data...)}
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, errors.New("memFile: bad whence")
	}
	if abs < 0 {
		return 0, errors.New("memFile: negative position")
	}
	m.pos = abs
	return abs, nil
}

func (m *memFile) Bytes() []byte {
	return m.data
}

// limitWriter accepts limit bytes in total, then fails with a short write.
type limitWriter struct {
	*memFile
	limit int
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return 0, io.ErrShortWrite
	}
	if len(p) > l.limit {
		n, _ := l.memFile.Write(p[:l.limit])
		l.limit = 0
		return n, io.ErrShortWrite
	}
	l.limit -= len(p)
	return l.memFile.Write(p)
}

// seekFailer fails every seek.
type seekFailer struct {
	*memFile
}

var errSeek = errors.New("seek refused")

func (s seekFailer) Seek(int64, int) (int64, error) {
	return 0, errSeek
}

// spyStream counts every call made on the stream.
type spyStream struct {
	*memFile
	calls int
}

func (s *spyStream) Read(p []byte) (int, error) {
	s.calls++
	return s.memFile.Read(p)
}

func (s *spyStream) Write(p []byte) (int, error) {
	s.calls++
	return s.memFile.Write(p)
}

func (s *spyStream) Seek(offset int64, whence int) (int64, error) {
	s.calls++
	return s.memFile.Seek(offset, whence)
}
