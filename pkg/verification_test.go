package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

func TestVerifyFile(t *testing.T) {
	dir := t.TempDir()
	hdr, data := gradient16(8, 6)

	good := filepath.Join(dir, "good.kro")
	require.NoError(t, WriteFile(good, hdr, data, 0o644))

	truncated := filepath.Join(dir, "truncated.kro")
	require.NoError(t, WriteFile(truncated, hdr, data, 0o644))
	require.NoError(t, os.Truncate(truncated, hdr.RowOffset(3)+5))

	padded := filepath.Join(dir, "padded.kro")
	require.NoError(t, WriteFile(padded, hdr, data, 0o644))
	f, err := os.OpenFile(padded, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	badMagic := filepath.Join(dir, "bad.kro")
	require.NoError(t, os.WriteFile(badMagic, []byte("BMP\x01\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00\x08\x00\x00\x00\x03abc"), 0o644))

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		contains []string
		is       []error
	}{
		{name: "good", path: good},
		{
			name:     "truncated",
			path:     truncated,
			wantErr:  true,
			contains: []string{"file size", "row 3"},
			is:       []error{ErrVerificationFailed, kro.ErrIO},
		},
		{
			name:     "trailing bytes",
			path:     padded,
			wantErr:  true,
			contains: []string{"expected 404"},
			is:       []error{ErrVerificationFailed},
		},
		{
			name:    "bad magic",
			path:    badMagic,
			wantErr: true,
			is:      []error{ErrVerificationFailed, kro.ErrFormat},
		},
		{
			name:    "missing",
			path:    filepath.Join(dir, "nope.kro"),
			wantErr: true,
			is:      []error{os.ErrNotExist},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyFileWithLogger(tt.path, testLogger())
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
			for _, target := range tt.is {
				assert.ErrorIs(t, err, target)
			}
		})
	}
}

func TestVerifyFileDefaultLogger(t *testing.T) {
	t.Setenv("KRO_LOG_LEVEL", "off")
	path := filepath.Join(t.TempDir(), "img.kro")
	hdr, data := gradient16(3, 3)
	require.NoError(t, WriteFile(path, hdr, data, 0o644))

	assert.NoError(t, VerifyFile(path))
}
