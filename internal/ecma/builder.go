package ecma

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/asmref/model"
)

// Builder assembles a metadata root from rows and heap entries. It writes
// the same layout Open reads and is used to produce test images and
// fixtures.
//
// Builder is not safe for concurrent use.
type Builder struct {
	version string
	strings bytes.Buffer
	blobs   bytes.Buffer
	guids   bytes.Buffer
	interns map[string]uint32
	rows    [tableCount][][]uint32
	pad     [3]int // extra bytes appended to #Strings, #Blob, #GUID
}

// NewBuilder returns a Builder for a container with the given version string.
func NewBuilder(version string) *Builder {
	b := &Builder{version: version, interns: make(map[string]uint32)}
	b.strings.WriteByte(0)
	b.blobs.WriteByte(0)
	return b
}

// String interns s in #Strings and returns its offset.
func (b *Builder) String(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := b.interns[s]; ok {
		return off
	}
	off := uint32(b.strings.Len())
	b.strings.WriteString(s)
	b.strings.WriteByte(0)
	b.interns[s] = off
	return off
}

// Blob appends data to #Blob and returns its offset. Empty data is offset 0.
func (b *Builder) Blob(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	off := uint32(b.blobs.Len())
	n := len(data)
	switch {
	case n < 0x80:
		b.blobs.WriteByte(byte(n))
	case n < 0x4000:
		b.blobs.Write(binary.BigEndian.AppendUint16(nil, uint16(n)|0x8000))
	default:
		b.blobs.Write(binary.BigEndian.AppendUint32(nil, uint32(n)|0xC0000000))
	}
	b.blobs.Write(data)
	return off
}

// GUID appends g to #GUID and returns its 1-based index.
func (b *Builder) GUID(g [16]byte) uint32 {
	b.guids.Write(g[:])
	return uint32(b.guids.Len() / 16)
}

// PadHeaps grows the heaps so that their indexes need four bytes.
func (b *Builder) PadHeaps(strings, blobs, guids int) {
	b.pad = [3]int{strings, blobs, guids}
}

// AddRow appends a raw row to table t and returns its 1-based row id.
// values must match the table's column count; coded indexes are passed
// already encoded.
func (b *Builder) AddRow(t TableID, values ...uint32) uint32 {
	if len(values) != len(schema[t]) {
		panic(fmt.Sprintf("ecma: table %#02x takes %d columns, got %d", uint8(t), len(schema[t]), len(values)))
	}
	b.rows[t] = append(b.rows[t], values)
	return uint32(len(b.rows[t]))
}

// AssemblyRefRow describes an AssemblyRef row for AddAssemblyRef.
type AssemblyRefRow struct {
	Name             string
	Culture          string
	Version          model.Version
	Flags            model.AssemblyFlags
	PublicKeyOrToken []byte
	HashValue        []byte
}

// AddAssemblyRef appends an AssemblyRef row and returns its row id.
func (b *Builder) AddAssemblyRef(r AssemblyRefRow) uint32 {
	return b.AddRow(TableAssemblyRef,
		uint32(r.Version.Major), uint32(r.Version.Minor), uint32(r.Version.Build), uint32(r.Version.Revision),
		uint32(r.Flags), b.Blob(r.PublicKeyOrToken), b.String(r.Name), b.String(r.Culture), b.Blob(r.HashValue))
}

// AddAssembly appends the Assembly row.
func (b *Builder) AddAssembly(def AssemblyDef) uint32 {
	const hashAlgSHA1 = 0x8004
	return b.AddRow(TableAssembly, hashAlgSHA1,
		uint32(def.Version.Major), uint32(def.Version.Minor), uint32(def.Version.Build), uint32(def.Version.Revision),
		uint32(def.Flags), b.Blob(def.PublicKey), b.String(def.Name), b.String(def.Culture))
}

// AddModule appends the Module row.
func (b *Builder) AddModule(name string, mvid [16]byte) uint32 {
	return b.AddRow(TableModule, 0, b.String(name), b.GUID(mvid), 0, 0)
}

// AddTypeRef appends a TypeRef scoped to an AssemblyRef row.
func (b *Builder) AddTypeRef(scope uint32, namespace, name string) uint32 {
	return b.AddRow(TableTypeRef, encodeCoded(&resolutionScope, Ref{TableAssemblyRef, scope}), b.String(name), b.String(namespace))
}

// AddTypeDef appends a TypeDef whose method list starts at methodList.
func (b *Builder) AddTypeDef(namespace, name string, methodList uint32) uint32 {
	return b.AddRow(TableTypeDef, 0, b.String(name), b.String(namespace), 0, 1, methodList)
}

// AddMethodDef appends a MethodDef row.
func (b *Builder) AddMethodDef(name string) uint32 {
	return b.AddRow(TableMethodDef, 0, 0, 0, b.String(name), b.Blob([]byte{0x20, 0x00, 0x01}), 1)
}

// AddMemberRef appends a constructor MemberRef on a TypeRef.
func (b *Builder) AddMemberRef(typeRef uint32) uint32 {
	return b.AddRow(TableMemberRef, encodeCoded(&memberRefParent, Ref{TableTypeRef, typeRef}), b.String(".ctor"), b.Blob([]byte{0x20, 0x00, 0x01}))
}

// AddCustomAttribute attaches an attribute with constructor ctor to parent.
func (b *Builder) AddCustomAttribute(parent, ctor Ref, value []byte) uint32 {
	return b.AddRow(TableCustomAttribute,
		encodeCoded(&hasCustomAttribute, parent), encodeCoded(&customAttributeType, ctor), b.Blob(value))
}

// encodeCoded encodes r as a coded index of kind c. It panics if c cannot
// reference r.Table.
func encodeCoded(c *codedIndex, r Ref) uint32 {
	for tag, t := range c.tables {
		if t == r.Table {
			return r.Row<<c.bits | uint32(tag)
		}
	}
	panic(fmt.Sprintf("ecma: table %#02x not addressable by coded index", uint8(r.Table)))
}

// Bytes serializes the metadata root.
func (b *Builder) Bytes() []byte {
	strs := padTo4(append(bytes.Clone(b.strings.Bytes()), make([]byte, b.pad[0])...))
	blobs := padTo4(append(bytes.Clone(b.blobs.Bytes()), make([]byte, b.pad[1])...))
	guids := append(bytes.Clone(b.guids.Bytes()), make([]byte, b.pad[2]*16)...)

	var heapSizes uint8
	if len(strs) >= 1<<16 {
		heapSizes |= heapSizeStrings
	}
	if len(guids)/16 >= 1<<16 {
		heapSizes |= heapSizeGUID
	}
	if len(blobs) >= 1<<16 {
		heapSizes |= heapSizeBlob
	}

	var counts [tableCount]uint32
	var valid uint64
	for t := range b.rows {
		counts[t] = uint32(len(b.rows[t]))
		if counts[t] > 0 {
			valid |= 1 << t
		}
	}

	var ts bytes.Buffer
	ts.Write(make([]byte, 4))
	ts.Write([]byte{2, 0, heapSizes, 1})
	ts.Write(binary.LittleEndian.AppendUint64(nil, valid))
	ts.Write(binary.LittleEndian.AppendUint64(nil, 0))
	for t := range counts {
		if counts[t] > 0 {
			ts.Write(binary.LittleEndian.AppendUint32(nil, counts[t]))
		}
	}
	for t, rows := range b.rows {
		for _, row := range rows {
			for i, c := range schema[t] {
				v := row[i]
				if c.width(&counts, heapSizes) == 2 {
					ts.Write(binary.LittleEndian.AppendUint16(nil, uint16(v)))
				} else {
					ts.Write(binary.LittleEndian.AppendUint32(nil, v))
				}
			}
		}
	}
	tables := padTo4(ts.Bytes())

	type stream struct {
		name string
		data []byte
	}
	streams := []stream{{"#~", tables}, {"#Strings", strs}, {"#US", []byte{0, 0, 0, 0}}, {"#GUID", guids}, {"#Blob", blobs}}

	version := padTo4(append([]byte(b.version), 0))
	headerSize := 16 + len(version) + 4
	for _, s := range streams {
		headerSize += 8 + align4(len(s.name)+1)
	}

	var out bytes.Buffer
	out.Write(binary.LittleEndian.AppendUint32(nil, metadataSignature))
	out.Write(binary.LittleEndian.AppendUint16(nil, 1))
	out.Write(binary.LittleEndian.AppendUint16(nil, 1))
	out.Write(make([]byte, 4))
	out.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(version))))
	out.Write(version)
	out.Write([]byte{0, 0})
	out.Write(binary.LittleEndian.AppendUint16(nil, uint16(len(streams))))

	offset := headerSize
	for _, s := range streams {
		out.Write(binary.LittleEndian.AppendUint32(nil, uint32(offset)))
		out.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(s.data))))
		out.Write(padTo4(append([]byte(s.name), 0)))
		offset += len(s.data)
	}
	for _, s := range streams {
		out.Write(s.data)
	}
	return out.Bytes()
}

func padTo4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}
