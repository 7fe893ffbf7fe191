package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of the given content.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ChecksumString computes the xxHash64 of the given string.
func ChecksumString(data string) uint64 {
	return xxhash.Sum64String(data)
}
