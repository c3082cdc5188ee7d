package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns the hex md5 of input. Used for cache keys and
// deterministic document IDs, not for anything security sensitive.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// ShortToken returns the first n hex characters of the md5 of input,
// handy for unique-ish filename suffixes.
func ShortToken(input string, n int) string {
	h := HashString(input)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}
