// Package testutil synthesizes metadata images for tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Fixed Images
//
//	img := testutil.WinMD()       // Windows Runtime metadata with an mscorlib anchor
//	img := testutil.Ecma()        // plain ECMA-335 metadata
//	data := img.PE()              // the same metadata inside a PE32 envelope
//
// # Random Images
//
//	rng := testutil.NewRNG(seed)
//	img := rng.RandomImage(16)    // up to 16 references, anchor at a random row
//
// The returned Image records the rows it was built from so tests can check
// decoded values against what was written.
package testutil
