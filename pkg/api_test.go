package pkg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pkg-test",
		Level:  hclog.Trace,
		Output: os.Stderr,
	})
}

func gradient16(w, h uint32) (kro.Header, []byte) {
	hdr := kro.Header{Width: w, Height: h, Depth: kro.Depth16, Components: kro.ComponentsRGBA}
	samples := make([]uint16, 0, w*h*4)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			samples = append(samples, uint16(x*257), uint16(y*257), 0, 65535)
		}
	}
	return hdr, kro.PackUint16(samples)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradient.kro")
	hdr, data := gradient16(16, 8)

	require.NoError(t, WriteFile(path, hdr, data, 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, hdr.FileSize(), info.Size())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	gotHdr, gotData, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, data, gotData)
}

func TestWriteFileRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.kro")

	err := WriteFile(path, kro.Header{Width: 1, Height: 1, Depth: 12, Components: 3}, make([]byte, 3), 0o644)
	assert.ErrorIs(t, err, kro.ErrInvalidArgument)

	hdr, data := gradient16(2, 2)
	err = WriteFile(path, hdr, data[:len(data)-1], 0o644)
	assert.ErrorIs(t, err, kro.ErrInvalidArgument)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "x.kro"), hdr, data, 0o644)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.kro")
	hdr, data := gradient16(4, 4)
	require.NoError(t, WriteFile(path, hdr, data, 0o644))
	require.NoError(t, os.Truncate(path, hdr.FileSize()-1))

	gotHdr, gotData, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, hdr, gotHdr)
	assert.Nil(t, gotData)

	require.NoError(t, os.WriteFile(path, []byte("KRO\x07"), 0o644))
	_, _, err = ReadFile(path)
	assert.ErrorIs(t, err, kro.ErrUnsupportedVersion)
}
