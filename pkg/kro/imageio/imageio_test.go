package imageio

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/kro/go/kro/pkg/kro"
)

func patternNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 30), B: uint8(x + y), A: uint8(255 - x*10)})
		}
	}
	return img
}

func patternNRGBA64(w, h int) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{R: uint16(x * 4099), G: uint16(y * 7919), B: 12345, A: uint16(65535 - x*3)})
		}
	}
	return img
}

// encodeToFile encodes img into a temp file and returns its bytes.
func encodeToFile(t *testing.T, img image.Image, opts *Options) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.kro")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Encode(f, img, opts))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestEncodeDecode8BitRGBA(t *testing.T) {
	src := patternNRGBA(6, 5)
	data := encodeToFile(t, src, nil)
	assert.Len(t, data, 20+6*5*4)

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	got, ok := img.(*image.NRGBA)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, src.Pix, got.Pix)
}

func TestEncodeDecode8BitRGB(t *testing.T) {
	src := patternNRGBA(4, 3)
	data := encodeToFile(t, src, &Options{Depth: 8, Components: 3})
	assert.Len(t, data, 20+4*3*3)
	assert.Equal(t, []byte{src.Pix[0], src.Pix[1], src.Pix[2]}, data[20:23])

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	got := img.(*image.NRGBA)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := src.NRGBAAt(x, y)
			want.A = 0xff
			assert.Equal(t, want, got.NRGBAAt(x, y))
		}
	}
}

func TestEncodeDecodeWide(t *testing.T) {
	for _, depth := range []uint32{16, 32} {
		for _, components := range []uint32{3, 4} {
			h := kro.Header{Width: 7, Height: 4, Depth: depth, Components: components}
			t.Run(h.String(), func(t *testing.T) {
				src := patternNRGBA64(7, 4)
				data := encodeToFile(t, src, &Options{Depth: depth, Components: components})
				assert.Len(t, data, int(h.FileSize()))

				img, err := Decode(bytes.NewReader(data))
				require.NoError(t, err)
				got, ok := img.(*image.NRGBA64)
				require.True(t, ok, "got %T", img)

				for y := 0; y < 4; y++ {
					for x := 0; x < 7; x++ {
						want := src.NRGBA64At(x, y)
						if components == 3 {
							want.A = 0xffff
						}
						assert.Equal(t, want, got.NRGBA64At(x, y), "pixel %d,%d", x, y)
					}
				}
			})
		}
	}
}

func TestFloatSamplesAreUnitRange(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	src.SetNRGBA64(0, 0, color.NRGBA64{R: 0, G: 65535, B: 0, A: 65535})
	data := encodeToFile(t, src, &Options{Depth: 32, Components: 3})

	assert.Equal(t, float32(0), kro.Float32(data[20:]))
	assert.Equal(t, float32(1), kro.Float32(data[24:]))
}

func TestDecodeClampsFloats(t *testing.T) {
	h := kro.Header{Width: 2, Height: 1, Depth: 32, Components: 3}
	file := h.Pack()
	for _, f := range []float32{-1, 0.5, 2, 1, 0, 0.25} {
		b := make([]byte, 4)
		kro.PutFloat32(b, f)
		file = append(file, b...)
	}

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)
	got := img.(*image.NRGBA64)
	assert.Equal(t, color.NRGBA64{R: 0, G: 32768, B: 65535, A: 65535}, got.NRGBA64At(0, 0))
	assert.Equal(t, color.NRGBA64{R: 65535, G: 0, B: 16384, A: 65535}, got.NRGBA64At(1, 0))
}

func TestEncodeSubImage(t *testing.T) {
	// opaque, so 8- and 16-bit conversions are exact
	src := patternNRGBA(8, 8)
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	sub := src.SubImage(image.Rect(2, 3, 6, 7))

	for _, depth := range []uint32{8, 16} {
		data := encodeToFile(t, sub, &Options{Depth: depth, Components: 4})
		img, err := Decode(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

		r1, g1, b1, a1 := img.At(0, 0).RGBA()
		r2, g2, b2, a2 := src.At(2, 3).RGBA()
		assert.Equal(t, []uint32{r2, g2, b2, a2}, []uint32{r1, g1, b1, a1}, "depth %d", depth)
	}
}

func TestEncodeRejectsEmptyImage(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "empty.kro"))
	require.NoError(t, err)
	defer f.Close()

	err = Encode(f, image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil)
	assert.ErrorIs(t, err, kro.ErrInvalidArgument)

	err = Encode(f, patternNRGBA(1, 1), &Options{Depth: 12, Components: 4})
	assert.ErrorIs(t, err, kro.ErrInvalidArgument)
}

func TestImageDecodeRegistration(t *testing.T) {
	data := encodeToFile(t, patternNRGBA64(3, 2), &Options{Depth: 16, Components: 4})

	// bytes.Buffer does not seek, so Decode takes the buffering path
	img, format, err := image.Decode(bytes.NewBuffer(data))
	require.NoError(t, err)
	assert.Equal(t, "kro", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	cfg, format, err := image.DecodeConfig(bytes.NewBuffer(data))
	require.NoError(t, err)
	assert.Equal(t, "kro", format)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
	assert.Equal(t, color.NRGBA64Model, cfg.ColorModel)
}

func TestDecodeConfig8Bit(t *testing.T) {
	data := encodeToFile(t, patternNRGBA(5, 9), nil)
	cfg, err := DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Width)
	assert.Equal(t, 9, cfg.Height)
	assert.Equal(t, color.NRGBAModel, cfg.ColorModel)
}

func TestDecodeErrors(t *testing.T) {
	good := encodeToFile(t, patternNRGBA(2, 2), nil)

	badVersion := append([]byte(nil), good...)
	badVersion[3] = 9

	_, err := Decode(bytes.NewReader(badVersion))
	assert.ErrorIs(t, err, kro.ErrUnsupportedVersion)

	_, err = Decode(bytes.NewReader([]byte("GIF89a-not-a-kro-file")))
	assert.ErrorIs(t, err, kro.ErrFormat)

	_, err = Decode(bytes.NewReader(good[:len(good)-1]))
	assert.ErrorIs(t, err, kro.ErrIO)

	_, err = DecodeConfig(bytes.NewReader(good[:10]))
	assert.Error(t, err)
}

func TestDecodeHeaderLargerThanData(t *testing.T) {
	tests := []struct {
		name string
		h    kro.Header
	}{
		{"max dimensions", kro.Header{Width: 0xFFFFFFFF, Height: 0xFFFFFFFF, Depth: 16, Components: 4}},
		{"50000 square", kro.Header{Width: 50000, Height: 50000, Depth: 8, Components: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := append(tt.h.Pack(), 1, 2, 3, 4)

			_, err := Decode(bytes.NewReader(file))
			assert.ErrorIs(t, err, kro.ErrIO)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

			// image.Decode hands over a non-seekable reader
			_, format, err := image.Decode(bytes.NewReader(file))
			assert.Equal(t, "kro", format)
			assert.ErrorIs(t, err, kro.ErrIO)
		})
	}
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, checkDimensions(kro.Header{Width: 1 << 16, Height: 1 << 16, Depth: 8, Components: 3}))

	err := checkDimensions(kro.Header{Width: 0xFFFFFFFF, Height: 0xFFFFFFFF, Depth: 8, Components: 3})
	assert.ErrorIs(t, err, kro.ErrFormat)
}

// endless yields zero bytes forever.
type endless struct{}

func (endless) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestDecodeBuffersOnlyDeclaredBytes(t *testing.T) {
	src := patternNRGBA(3, 2)
	data := encodeToFile(t, src, nil)

	// MultiReader hides Seek, so Decode takes the buffering path
	img, err := Decode(io.MultiReader(bytes.NewReader(data), endless{}))
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.(*image.NRGBA).Pix)

	rs, err := asReadSeeker(io.MultiReader(bytes.NewReader(data), endless{}))
	require.NoError(t, err)
	n, err := remaining(rs)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	// short and malformed headers still reach ReadInfo
	_, err = Decode(io.MultiReader(bytes.NewReader(data[:7])))
	assert.ErrorIs(t, err, kro.ErrIO)
	_, err = Decode(io.MultiReader(bytes.NewReader([]byte("GIF89a-not-a-kro-file"))))
	assert.ErrorIs(t, err, kro.ErrFormat)
}
