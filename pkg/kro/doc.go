// Package kro reads and writes KRO images.
//
// A KRO file is a fixed 20-byte header followed by uncompressed pixel rows:
//
//	offset 0   3 bytes  magic "KRO"
//	offset 3   1 byte   version (1)
//	offset 4   uint32   width
//	offset 8   uint32   height
//	offset 12  uint32   depth (8, 16 or 32 bits per sample)
//	offset 16  uint32   components (3 = RGB, 4 = RGBA)
//	offset 20  height rows of width*components samples
//
// All integers and samples are big-endian on disk. 16-bit samples are
// unsigned integers and 32-bit samples are IEEE-754 float32.
//
// Row and image buffers passed to a Codec hold samples in host byte order
// (binary.NativeEndian). PackUint16 and PackFloat32 build such buffers from
// typed slices; UnpackUint16 and UnpackFloat32 go the other way.
//
// A Codec is not safe for concurrent use. Every row operation seeks the bound
// stream, so callers sharing a Codec across goroutines must serialize access.
package kro
