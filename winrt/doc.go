// Package winrt implements the Windows Runtime projection of assembly references.
//
// # Overview
//
// Code compiled against Windows Runtime metadata (.winmd) references types
// that the .NET runtime redirects into a fixed set of contract assemblies.
// Those contract assemblies never appear as rows in the authored metadata.
// A projecting reader therefore appends six virtual AssemblyRef entries:
//
//	System.Runtime
//	System.Runtime.InteropServices.WindowsRuntime
//	System.ObjectModel
//	System.Runtime.WindowsRuntime
//	System.Runtime.WindowsRuntime.UI.Xaml
//	System.Numerics.Vectors
//
// # Resolution Rules
//
// Each attribute of a virtual reference is computed by Resolver from the
// anchor row, the physical reference to mscorlib:
//
//	Version           1.1.0.0 for System.Numerics.Vectors, else 4.0.0.0
//	Flags             anchor flags
//	Name              fixed constant per slot
//	Culture           neutral
//	PublicKeyOrToken  anchor key (WindowsRuntime, WindowsRuntime.UI.Xaml)
//	                  or contract key/token chosen by the anchor's PublicKey bit
//	HashValue         absent
//	CustomAttributes  anchor attributes
//
// Names and contract keys are addressed by virtual model.StringHandle and
// model.BlobHandle values and resolved with VirtualString and VirtualBlob.
//
// # Type Projections
//
// ProjectType maps a Windows Runtime type to its .NET replacement and the
// virtual assembly that defines it.
//
// # Invariants
//
// Passing an undefined VirtualIndex, or resolving through a Resolver that has
// no anchor row, panics with *model.InvariantError.
package winrt
