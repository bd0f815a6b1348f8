// Package conv provides checked integer conversions for lengths, offsets
// and sizes read from untrusted images.
//
// Metadata headers store 32-bit offsets and blob stores report 64-bit sizes,
// while slicing needs int. The helpers return an error instead of silently
// wrapping when a value does not fit.
package conv
