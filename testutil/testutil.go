package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/asmref/internal/ecma"
	"github.com/hupe1980/asmref/internal/pe"
	"github.com/hupe1980/asmref/model"
)

// Metadata version strings.
const (
	WindowsRuntimeVersion = "WindowsRuntime 1.4"
	ManagedVersion        = "WindowsRuntime 1.4;CLR v4.0.30319"
	EcmaVersion           = "v4.0.30319"
)

// MscorlibToken is the public key token of mscorlib (b77a5c561934e089).
var MscorlibToken = []byte{0xB7, 0x7A, 0x5C, 0x56, 0x19, 0x34, 0xE0, 0x89}

// MscorlibKey stands in for a full public key.
var MscorlibKey = func() []byte {
	key := make([]byte, 160)
	for i := range key {
		key[i] = byte(i*7 + 3)
	}
	return key
}()

// Ref describes one AssemblyRef row of a synthesized image.
type Ref struct {
	Name             string
	Culture          string
	Version          model.Version
	Flags            model.AssemblyFlags
	PublicKeyOrToken []byte
	HashValue        []byte
	// Attributes is the number of custom attributes attached to the row.
	Attributes int
}

// Image is a synthesized metadata root and the rows it was built from.
type Image struct {
	// Metadata is the raw metadata root.
	Metadata []byte
	Version  string
	// Refs holds the AssemblyRef rows; Refs[i] is row i+1.
	Refs []Ref
	// Anchor is the mscorlib row, or 0 if the image has none.
	Anchor uint32
	// Attributes maps AssemblyRef rows to the CustomAttribute rows they own.
	Attributes map[uint32][]uint32
}

// PE returns the metadata wrapped in a PE32 envelope.
func (img *Image) PE() []byte { return pe.Wrap(img.Metadata) }

// AnchorRef returns the anchor's row description. It panics when the image
// has no anchor.
func (img *Image) AnchorRef() Ref {
	if img.Anchor == 0 {
		panic("testutil: image has no anchor")
	}
	return img.Refs[img.Anchor-1]
}

// Build writes an image with the given version string and references.
// Anchor is set to the first reference named mscorlib.
func Build(version string, refs []Ref) *Image {
	b := ecma.NewBuilder(version)
	b.AddModule("Contoso.winmd", [16]byte{0xC0, 0x47, 0x05, 0x0D})
	b.AddAssembly(ecma.AssemblyDef{
		Name:    "Contoso",
		Version: model.Version{Major: 255, Minor: 255, Build: 255, Revision: 255},
		Flags:   model.AssemblyFlagsWindowsRuntime,
	})

	img := &Image{Version: version, Refs: refs, Attributes: make(map[uint32][]uint32)}
	for _, r := range refs {
		row := b.AddAssemblyRef(ecma.AssemblyRefRow{
			Name:             r.Name,
			Culture:          r.Culture,
			Version:          r.Version,
			Flags:            r.Flags,
			PublicKeyOrToken: r.PublicKeyOrToken,
			HashValue:        r.HashValue,
		})
		if img.Anchor == 0 && r.Name == "mscorlib" {
			img.Anchor = row
		}
	}

	if len(refs) > 0 {
		attrType := b.AddTypeRef(1, "System.Runtime.Versioning", "TargetFrameworkAttribute")
		ctor := b.AddMemberRef(attrType)
		for i, r := range refs {
			row := uint32(i + 1)
			for j := range r.Attributes {
				value := []byte{0x01, 0x00, byte(j), 0x00, 0x00}
				ca := b.AddCustomAttribute(ecma.Ref{Table: ecma.TableAssemblyRef, Row: row}, ecma.Ref{Table: ecma.TableMemberRef, Row: ctor}, value)
				img.Attributes[row] = append(img.Attributes[row], ca)
			}
		}
		b.AddCustomAttribute(ecma.Ref{Table: ecma.TableAssembly, Row: 1}, ecma.Ref{Table: ecma.TableMemberRef, Row: ctor}, nil)
	}

	img.Metadata = b.Bytes()
	return img
}

var (
	winmdVersion = model.Version{Major: 255, Minor: 255, Build: 255, Revision: 255}
	clrVersion   = model.Version{Major: 4}
)

// WinMD returns Windows Runtime metadata referencing Windows (row 1),
// mscorlib (row 2, the anchor, with two attributes) and Windows.Foundation
// (row 3).
func WinMD() *Image {
	return Build(WindowsRuntimeVersion, []Ref{
		{Name: "Windows", Version: winmdVersion, Flags: model.AssemblyFlagsWindowsRuntime},
		{Name: "mscorlib", Version: winmdVersion, PublicKeyOrToken: MscorlibToken, HashValue: []byte{0xAA, 0xBB}, Attributes: 2},
		{Name: "Windows.Foundation", Version: winmdVersion, Flags: model.AssemblyFlagsWindowsRuntime, Attributes: 1},
	})
}

// Ecma returns ECMA-335 metadata referencing mscorlib (row 1) and
// System.Core (row 2).
func Ecma() *Image {
	return Build(EcmaVersion, []Ref{
		{Name: "mscorlib", Version: clrVersion, PublicKeyOrToken: MscorlibToken, Attributes: 1},
		{Name: "System.Core", Version: clrVersion, PublicKeyOrToken: MscorlibToken},
	})
}

// RNG generates random images from a fixed seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// RandomImage builds Windows Runtime metadata with 1 to maxRefs references.
// Exactly one of them is mscorlib; its row, flags, key form and attribute
// count are random.
func (r *RNG) RandomImage(maxRefs int) *Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 1 + r.rand.Intn(maxRefs)
	anchor := r.rand.Intn(n)
	refs := make([]Ref, n)
	for i := range refs {
		ref := Ref{
			Name: fmt.Sprintf("Contoso.Dependency%d", i),
			Version: model.Version{
				Major:    uint16(r.rand.Intn(256)),
				Minor:    uint16(r.rand.Intn(256)),
				Build:    uint16(r.rand.Intn(1 << 16)),
				Revision: uint16(r.rand.Intn(1 << 16)),
			},
			Attributes: r.rand.Intn(4),
		}
		if r.rand.Intn(2) == 0 {
			ref.Flags |= model.AssemblyFlagsWindowsRuntime
		}
		if r.rand.Intn(4) == 0 {
			ref.HashValue = []byte{byte(r.rand.Intn(256)), byte(r.rand.Intn(256))}
		}
		if i == anchor {
			ref.Name = "mscorlib"
			ref.PublicKeyOrToken = MscorlibToken
			if r.rand.Intn(2) == 0 {
				ref.Flags |= model.AssemblyFlagsPublicKey
				ref.PublicKeyOrToken = MscorlibKey
			}
			if r.rand.Intn(2) == 0 {
				ref.Flags |= model.AssemblyFlagsRetargetable
			}
		}
		refs[i] = ref
	}

	version := WindowsRuntimeVersion
	if r.rand.Intn(2) == 0 {
		version = ManagedVersion
	}
	return Build(version, refs)
}
