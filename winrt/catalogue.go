package winrt

import "fmt"

// VirtualIndex names one of the contract assemblies that Windows Runtime
// metadata is projected onto. Values are stable and start at 1 so that
// they can be stored in the row field of a model.AssemblyReferenceHandle.
type VirtualIndex uint32

const (
	SystemRuntime VirtualIndex = iota + 1
	SystemRuntimeInteropServicesWindowsRuntime
	SystemObjectModel
	SystemRuntimeWindowsRuntime
	SystemRuntimeWindowsRuntimeUIXaml
	SystemNumericsVectors
)

// Count is the number of virtual assembly references.
const Count = 6

// Valid reports whether ix is one of the six defined slots.
func (ix VirtualIndex) Valid() bool { return ix >= SystemRuntime && ix <= SystemNumericsVectors }

// Name returns the assembly name bound to ix.
// It panics if ix is not a defined slot.
func (ix VirtualIndex) Name() string {
	mustValid("winrt.VirtualIndex.Name", ix)
	return assemblyNames[ix]
}

func (ix VirtualIndex) String() string {
	if !ix.Valid() {
		return fmt.Sprintf("VirtualIndex(%d)", uint32(ix))
	}
	return assemblyNames[ix]
}

// VirtualIndices returns the six slots in encoding order.
func VirtualIndices() []VirtualIndex {
	return []VirtualIndex{
		SystemRuntime,
		SystemRuntimeInteropServicesWindowsRuntime,
		SystemObjectModel,
		SystemRuntimeWindowsRuntime,
		SystemRuntimeWindowsRuntimeUIXaml,
		SystemNumericsVectors,
	}
}

// LookupVirtualIndex returns the slot whose assembly name is name.
func LookupVirtualIndex(name string) (VirtualIndex, bool) {
	for ix := SystemRuntime; ix <= SystemNumericsVectors; ix++ {
		if assemblyNames[ix] == name {
			return ix, true
		}
	}
	return 0, false
}

var assemblyNames = [Count + 1]string{
	SystemRuntime:                              "System.Runtime",
	SystemRuntimeInteropServicesWindowsRuntime: "System.Runtime.InteropServices.WindowsRuntime",
	SystemObjectModel:                          "System.ObjectModel",
	SystemRuntimeWindowsRuntime:                "System.Runtime.WindowsRuntime",
	SystemRuntimeWindowsRuntimeUIXaml:          "System.Runtime.WindowsRuntime.UI.Xaml",
	SystemNumericsVectors:                      "System.Numerics.Vectors",
}

// VirtualString resolves the constant behind a virtual model.StringHandle
// offset. Virtual string indices coincide with VirtualIndex values.
func VirtualString(index uint32) (string, bool) {
	ix := VirtualIndex(index)
	if !ix.Valid() {
		return "", false
	}
	return assemblyNames[ix], true
}

// Virtual blob constants.
const (
	ContractPublicKeyToken uint32 = iota + 1
	ContractPublicKey
)

// contractPublicKeyToken is the token of the key that signs the contract
// assemblies (b03f5f7f11d50a3a).
var contractPublicKeyToken = []byte{0xB0, 0x3F, 0x5F, 0x7F, 0x11, 0xD5, 0x0A, 0x3A}

// contractPublicKey is the full public key whose token is contractPublicKeyToken.
var contractPublicKey = []byte{
	0x00, 0x24, 0x00, 0x00, 0x04, 0x80, 0x00, 0x00, 0x94, 0x00, 0x00, 0x00, 0x06, 0x02, 0x00, 0x00,
	0x00, 0x24, 0x00, 0x00, 0x52, 0x53, 0x41, 0x31, 0x00, 0x04, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x07, 0xD1, 0xFA, 0x57, 0xC4, 0xAE, 0xD9, 0xF0, 0xA3, 0x2E, 0x84, 0xAA, 0x0F, 0xAE, 0xFD, 0x0D,
	0xE9, 0xE8, 0xFD, 0x6A, 0xEC, 0x8F, 0x87, 0xFB, 0x03, 0x76, 0x6C, 0x83, 0x4C, 0x99, 0x92, 0x1E,
	0xB2, 0x3B, 0xE7, 0x9A, 0xD9, 0xD5, 0xDC, 0xC1, 0xDD, 0x9A, 0xD2, 0x36, 0x13, 0x21, 0x02, 0x90,
	0x0B, 0x72, 0x3C, 0xF9, 0x80, 0x95, 0x7F, 0xC4, 0xE1, 0x77, 0x10, 0x8F, 0xC6, 0x07, 0x77, 0x4F,
	0x29, 0xE8, 0x32, 0x0E, 0x92, 0xEA, 0x05, 0xEC, 0xE4, 0xE8, 0x21, 0xC0, 0xA5, 0xEF, 0xE8, 0xF1,
	0x64, 0x5C, 0x4C, 0x0C, 0x93, 0xC1, 0xAB, 0x99, 0x28, 0x5D, 0x62, 0x2C, 0xAA, 0x65, 0x2C, 0x1D,
	0xFA, 0xD6, 0x3D, 0x74, 0x5D, 0x6F, 0x2D, 0xE5, 0xF1, 0x7E, 0x5E, 0xAF, 0x0F, 0xC4, 0x96, 0x3D,
	0x26, 0x1C, 0x8A, 0x12, 0x43, 0x65, 0x18, 0x20, 0x6D, 0xC0, 0x93, 0x34, 0x4D, 0x5A, 0xD2, 0x93,
}

// VirtualBlob resolves the constant behind a virtual model.BlobHandle offset.
// The returned slice is shared and must not be modified.
func VirtualBlob(index uint32) ([]byte, bool) {
	switch index {
	case ContractPublicKeyToken:
		return contractPublicKeyToken, true
	case ContractPublicKey:
		return contractPublicKey, true
	default:
		return nil, false
	}
}
