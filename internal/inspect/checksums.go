// Package inspect summarises KRO files for the command-line tools.
//
// Checksums use a prefixed format: "algorithm:hexvalue" (e.g.
// "sha256:c0ffee...", "adler32:babe1337").
package inspect

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"
)

// ChecksumAlgorithm represents supported checksum algorithms
type ChecksumAlgorithm int

const (
	ChecksumSHA256 ChecksumAlgorithm = iota
	ChecksumSHA512
	ChecksumAdler32
)

func (c ChecksumAlgorithm) String() string {
	switch c {
	case ChecksumSHA256:
		return "sha256"
	case ChecksumSHA512:
		return "sha512"
	case ChecksumAdler32:
		return "adler32"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a name such as "sha256" to its algorithm.
func ParseAlgorithm(name string) (ChecksumAlgorithm, error) {
	switch strings.ToLower(name) {
	case "", "sha256":
		return ChecksumSHA256, nil
	case "sha512":
		return ChecksumSHA512, nil
	case "adler32":
		return ChecksumAdler32, nil
	default:
		return ChecksumSHA256, fmt.Errorf("unknown checksum algorithm: %s", name)
	}
}

// ParseChecksum splits a checksum string into algorithm and hex value.
// Unprefixed values are classified by length.
func ParseChecksum(checksumStr string) (ChecksumAlgorithm, string, error) {
	if algo, value, ok := strings.Cut(checksumStr, ":"); ok {
		a, err := ParseAlgorithm(algo)
		if err != nil {
			return ChecksumSHA256, "", err
		}
		if value == "" {
			return ChecksumSHA256, "", fmt.Errorf("invalid checksum format: %s", checksumStr)
		}
		return a, strings.ToLower(value), nil
	}

	switch len(checksumStr) {
	case 128:
		return ChecksumSHA512, strings.ToLower(checksumStr), nil
	case 8:
		return ChecksumAdler32, strings.ToLower(checksumStr), nil
	default:
		return ChecksumSHA256, strings.ToLower(checksumStr), nil
	}
}

func (c ChecksumAlgorithm) newHash() hash.Hash {
	switch c {
	case ChecksumSHA512:
		return sha512.New()
	case ChecksumAdler32:
		return adler32.New()
	default:
		return sha256.New()
	}
}

// formatChecksum renders a digest with its algorithm prefix.
func formatChecksum(algo ChecksumAlgorithm, sum []byte) string {
	return algo.String() + ":" + hex.EncodeToString(sum)
}

// MatchChecksum reports whether actual and expected name the same digest.
// An unprefixed expected value is compared by hex alone.
func MatchChecksum(actual, expected string) (bool, error) {
	actualAlgo, actualHex, err := ParseChecksum(actual)
	if err != nil {
		return false, err
	}
	expectedAlgo, expectedHex, err := ParseChecksum(expected)
	if err != nil {
		return false, err
	}
	if strings.Contains(expected, ":") && actualAlgo != expectedAlgo {
		return false, fmt.Errorf("checksum algorithms differ: %s vs %s", actualAlgo, expectedAlgo)
	}
	return actualHex == expectedHex, nil
}
