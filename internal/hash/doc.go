// Package hash fingerprints metadata images with CRC32-Castagnoli.
//
// The fingerprint covers the metadata root only, so the same metadata packed
// into a PE image, stored raw or compressed yields the same value:
//
//	fp := hash.Fingerprint(root) // "crc32c:1a2b3c4d"
//
// Go's crc32 package uses hardware instructions when available.
package hash
