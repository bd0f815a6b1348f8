// Package ecma reads ECMA-335 metadata roots: the BSJB header, the stream
// directory, the #Strings, #Blob and #GUID heaps and the compressed table
// stream.
//
// Only the tables needed to project assembly references are exposed with
// typed accessors. Every other table is still sized so that row offsets are
// correct.
package ecma
