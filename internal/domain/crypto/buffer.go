package crypto

import "fmt"

// ShrinkBuffer returns the first n bytes of buf in a buffer of exactly n bytes.
// buf itself is returned when it already has that length; otherwise the prefix
// is copied so no spare capacity of buf is retained.
// It panics when n is negative or larger than len(buf).
func ShrinkBuffer(buf []byte, n int) []byte {
	if n < 0 || n > len(buf) {
		panic(fmt.Sprintf("crypto: cannot shrink buffer of %d bytes to %d", len(buf), n))
	}
	if n == len(buf) {
		return buf
	}

	shrunk := make([]byte, n)
	copy(shrunk, buf[:n])
	return shrunk
}
