// Package model defines the value types shared by asmref packages.
//
// # Handles
//
//   - AssemblyReferenceHandle: row index (bits 0-23) plus a virtual flag (bit 31)
//   - StringHandle: #Strings heap offset, or a virtual string constant
//   - BlobHandle: #Blob heap offset, or a virtual blob constant
//
// Handles are opaque values produced by a reader session. A handle with the
// virtual bit set addresses an entry synthesized by the Windows Runtime
// projection layer rather than a physical row or heap entry.
//
// # Views
//
//   - Version: four-part assembly version
//   - AssemblyFlags: ECMA-335 assembly flag bits
//   - CustomAttributeSet: read-only set of CustomAttribute rows
//
// # Invariants
//
// Constructing a handle with a zero or oversized row index panics with an
// *InvariantError. Such values only arise from a defective upstream reader.
package model
