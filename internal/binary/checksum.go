package binary

import (
	"crypto/sha256"
	"strconv"
	"strings"
)

// Checksum computes the record checksum stored in the offset table: the
// SHA-256 digest rendered as uppercase hex with no zero padding per byte.
// Identical data always yields the same string, which is what record
// deduplication compares.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	var b strings.Builder
	b.Grow(2 * len(sum))
	for _, c := range sum {
		b.WriteString(strings.ToUpper(strconv.FormatUint(uint64(c), 16)))
	}
	return b.String()
}

// Fletcher32 computes the Fletcher-32 checksum appended to framed
// records.
//
// The input is treated as a sequence of 16-bit words in little-endian order.
// If the input has an odd number of bytes, it is padded with a zero byte.
func Fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32

	// Process 16-bit words
	length := len(data)
	i := 0
	for ; i+1 < length; i += 2 {
		word := uint32(data[i]) | uint32(data[i+1])<<8
		sum1 = (sum1 + word) % 65535
		sum2 = (sum2 + sum1) % 65535
	}

	// Handle odd byte (pad with zero)
	if i < length {
		word := uint32(data[i])
		sum1 = (sum1 + word) % 65535
		sum2 = (sum2 + sum1) % 65535
	}

	return (sum2 << 16) | sum1
}

// VerifyFletcher32 verifies data against an expected Fletcher-32 checksum.
func VerifyFletcher32(data []byte, expected uint32) bool {
	return Fletcher32(data) == expected
}
