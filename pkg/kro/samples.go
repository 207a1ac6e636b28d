package kro

import (
	"encoding/binary"
	"math"
)

type direction int

const (
	toDisk   direction = iota // host order -> big-endian
	fromDisk                  // big-endian -> host order
)

// transcodeRow converts samples between host byte order and the on-disk
// big-endian order. Each sample is converted on its own, so dst and src may
// be the same slice.
func transcodeRow(dir direction, depth uint32, dst, src []byte) {
	switch depth {
	case Depth8:
		copy(dst, src)
	case Depth16:
		for i := 0; i+2 <= len(src); i += 2 {
			if dir == toDisk {
				binary.BigEndian.PutUint16(dst[i:], binary.NativeEndian.Uint16(src[i:]))
			} else {
				binary.NativeEndian.PutUint16(dst[i:], binary.BigEndian.Uint16(src[i:]))
			}
		}
	case Depth32:
		for i := 0; i+4 <= len(src); i += 4 {
			if dir == toDisk {
				PutFloat32(dst[i:], math.Float32frombits(binary.NativeEndian.Uint32(src[i:])))
			} else {
				binary.NativeEndian.PutUint32(dst[i:], math.Float32bits(Float32(src[i:])))
			}
		}
	}
}

// PutFloat32 stores f big-endian in b[0:4]. The bit pattern is kept as is.
func PutFloat32(b []byte, f float32) {
	binary.BigEndian.PutUint32(b, math.Float32bits(f))
}

// Float32 reads a big-endian float32 from b[0:4].
func Float32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// PackUint16 returns the samples as a host-order byte buffer.
func PackUint16(samples []uint16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.NativeEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

// UnpackUint16 decodes a host-order byte buffer into 16-bit samples.
// A trailing odd byte is ignored.
func UnpackUint16(buf []byte) []uint16 {
	samples := make([]uint16, len(buf)/2)
	for i := range samples {
		samples[i] = binary.NativeEndian.Uint16(buf[i*2:])
	}
	return samples
}

// PackFloat32 returns the samples as a host-order byte buffer.
func PackFloat32(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.NativeEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// UnpackFloat32 decodes a host-order byte buffer into float samples.
func UnpackFloat32(buf []byte) []float32 {
	samples := make([]float32, len(buf)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.NativeEndian.Uint32(buf[i*4:]))
	}
	return samples
}
