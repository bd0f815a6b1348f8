package hash

import (
	"fmt"
	"hash"
	"hash/crc32"
)

// crc32cTable is pre-computed for the Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Uses hardware acceleration when available (SSE4.2, ARM CRC).
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Fingerprint identifies an image by the checksum of its metadata root,
// formatted as "crc32c:xxxxxxxx".
func Fingerprint(data []byte) string {
	return fmt.Sprintf("crc32c:%08x", CRC32C(data))
}
