package winrt

import (
	"github.com/hupe1980/asmref/model"
)

var (
	version1100 = model.Version{Major: 1, Minor: 1}
	version4000 = model.Version{Major: 4}
)

// AnchorVersion is the version reported for the anchor row of a projected
// container, replacing whatever version is authored there.
var AnchorVersion = version4000

// AnchorRows reads the anchor row's shared attributes.
type AnchorRows interface {
	RowFlags(row uint32) (model.AssemblyFlags, error)
	RowPublicKeyOrToken(row uint32) (model.BlobHandle, error)
	CustomAttributesOf(row uint32) (model.CustomAttributeSet, error)
}

// Resolver computes the attributes of virtual assembly references.
//
// A Resolver is a value bound to one reader session. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	rows   AnchorRows
	anchor uint32
}

// NewResolver returns a resolver that consults rows for the anchor row.
// anchor is the AssemblyRef row of the base class library; 0 means the
// session is not projected and every resolution panics.
func NewResolver(rows AnchorRows, anchor uint32) Resolver {
	return Resolver{rows: rows, anchor: anchor}
}

// Anchor returns the anchor row index.
func (r Resolver) Anchor() uint32 { return r.anchor }

// Version returns 1.1.0.0 for System.Numerics.Vectors and 4.0.0.0 otherwise.
func (r Resolver) Version(ix VirtualIndex) model.Version {
	r.check("Version", ix)
	if ix == SystemNumericsVectors {
		return version1100
	}
	return version4000
}

// Flags returns the anchor row's flags.
func (r Resolver) Flags(ix VirtualIndex) (model.AssemblyFlags, error) {
	r.check("Flags", ix)
	return r.rows.RowFlags(r.anchor)
}

// Name returns the virtual string handle of the slot's assembly name.
func (r Resolver) Name(ix VirtualIndex) model.StringHandle {
	r.check("Name", ix)
	return model.StringFromVirtualIndex(uint32(ix))
}

// Culture is always neutral.
func (r Resolver) Culture(ix VirtualIndex) model.StringHandle {
	r.check("Culture", ix)
	return model.StringHandle{}
}

// PublicKeyOrToken shares the anchor's key for the two WindowsRuntime
// slots. The other slots get the contract key, full or token form matching
// the anchor's AssemblyFlagsPublicKey bit.
func (r Resolver) PublicKeyOrToken(ix VirtualIndex) (model.BlobHandle, error) {
	r.check("PublicKeyOrToken", ix)
	switch ix {
	case SystemRuntimeWindowsRuntime, SystemRuntimeWindowsRuntimeUIXaml:
		return r.rows.RowPublicKeyOrToken(r.anchor)
	default:
		flags, err := r.rows.RowFlags(r.anchor)
		if err != nil {
			return model.BlobHandle{}, err
		}
		if flags.HasPublicKey() {
			return model.BlobFromVirtualIndex(ContractPublicKey), nil
		}
		return model.BlobFromVirtualIndex(ContractPublicKeyToken), nil
	}
}

// HashValue is always absent.
func (r Resolver) HashValue(ix VirtualIndex) model.BlobHandle {
	r.check("HashValue", ix)
	return model.BlobHandle{}
}

// CustomAttributes returns the anchor row's attribute set.
func (r Resolver) CustomAttributes(ix VirtualIndex) (model.CustomAttributeSet, error) {
	r.check("CustomAttributes", ix)
	return r.rows.CustomAttributesOf(r.anchor)
}

func (r Resolver) check(op string, ix VirtualIndex) {
	mustValid("winrt.Resolver."+op, ix)
	if r.anchor == 0 || r.rows == nil {
		panic(model.Invariantf("winrt.Resolver."+op, "virtual reference %s resolved without an anchor row", ix))
	}
}

func mustValid(op string, ix VirtualIndex) {
	if !ix.Valid() {
		panic(model.Invariantf(op, "virtual index %d out of range", uint32(ix)))
	}
}
