package kro

// Core format constants
const (
	Magic      = "KRO"
	Version    = 1
	HeaderSize = 20

	// DataOffset is where pixel data starts, independent of header contents.
	DataOffset = HeaderSize
)

// Supported sample depths in bits
const (
	Depth8  = 8
	Depth16 = 16
	Depth32 = 32
)

// Supported component counts
const (
	ComponentsRGB  = 3
	ComponentsRGBA = 4
)
