package ecma

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/asmref/model"
)

// anchorName is the AssemblyRef that Windows Runtime projections hang off.
const anchorName = "mscorlib"

// Tables reads AssemblyRef rows and their custom attributes.
//
// It is immutable once built and safe for concurrent use.
type Tables struct {
	md     *Metadata
	anchor uint32
	attrs  map[uint32]*roaring.Bitmap
}

// NewTables indexes md. When project is set and md is Windows Runtime
// metadata, the mscorlib AssemblyRef becomes the anchor row.
func NewTables(md *Metadata, project bool) (*Tables, error) {
	t := &Tables{md: md}

	if project && md.Kind() != Ecma335 {
		anchor, err := t.findAnchor()
		if err != nil {
			return nil, err
		}
		t.anchor = anchor
	}

	t.attrs = t.indexCustomAttributes()
	return t, nil
}

func (t *Tables) findAnchor() (uint32, error) {
	n := t.md.RowCount(TableAssemblyRef)
	for row := uint32(1); row <= n; row++ {
		name, err := t.md.String(t.md.cell(TableAssemblyRef, row, assemblyRefName))
		if err != nil {
			return 0, err
		}
		if name == anchorName {
			return row, nil
		}
	}
	return 0, ErrMissingAnchor
}

// indexCustomAttributes groups CustomAttribute rows by AssemblyRef parent.
func (t *Tables) indexCustomAttributes() map[uint32]*roaring.Bitmap {
	idx := make(map[uint32]*roaring.Bitmap)
	refs := t.md.RowCount(TableAssemblyRef)
	n := t.md.RowCount(TableCustomAttribute)
	for row := uint32(1); row <= n; row++ {
		parent := t.md.cell(TableCustomAttribute, row, customAttributeParentCol)
		if parent&(1<<hasCustomAttribute.bits-1) != hasCustomAttributeAssemblyRef {
			continue
		}
		ref := parent >> hasCustomAttribute.bits
		if ref == 0 || ref > refs {
			continue
		}
		b, ok := idx[ref]
		if !ok {
			b = roaring.New()
			idx[ref] = b
		}
		b.Add(row)
	}
	for _, b := range idx {
		b.RunOptimize()
	}
	return idx
}

// Metadata returns the underlying metadata.
func (t *Tables) Metadata() *Metadata { return t.md }

// RowCount returns the number of physical AssemblyRef rows.
func (t *Tables) RowCount() uint32 { return t.md.RowCount(TableAssemblyRef) }

// AnchorRow returns the mscorlib row, or 0 when the metadata is not projected.
func (t *Tables) AnchorRow() (uint32, error) { return t.anchor, nil }

// RowVersion returns the authored version of an AssemblyRef row.
func (t *Tables) RowVersion(row uint32) (model.Version, error) {
	if err := t.md.checkRow(TableAssemblyRef, row); err != nil {
		return model.Version{}, err
	}
	return model.Version{
		Major:    uint16(t.md.cell(TableAssemblyRef, row, assemblyRefMajor)),
		Minor:    uint16(t.md.cell(TableAssemblyRef, row, assemblyRefMinor)),
		Build:    uint16(t.md.cell(TableAssemblyRef, row, assemblyRefBuild)),
		Revision: uint16(t.md.cell(TableAssemblyRef, row, assemblyRefRevision)),
	}, nil
}

// RowFlags returns the flags of an AssemblyRef row.
func (t *Tables) RowFlags(row uint32) (model.AssemblyFlags, error) {
	if err := t.md.checkRow(TableAssemblyRef, row); err != nil {
		return 0, err
	}
	return model.AssemblyFlags(t.md.cell(TableAssemblyRef, row, assemblyRefFlags)), nil
}

// RowName returns the name handle of an AssemblyRef row.
func (t *Tables) RowName(row uint32) (model.StringHandle, error) {
	return t.stringColumn(row, assemblyRefName)
}

// RowCulture returns the culture handle of an AssemblyRef row.
func (t *Tables) RowCulture(row uint32) (model.StringHandle, error) {
	return t.stringColumn(row, assemblyRefCulture)
}

// RowPublicKeyOrToken returns the key or token handle of an AssemblyRef row.
func (t *Tables) RowPublicKeyOrToken(row uint32) (model.BlobHandle, error) {
	return t.blobColumn(row, assemblyRefPublicKeyOrToken)
}

// RowHashValue returns the hash handle of an AssemblyRef row.
func (t *Tables) RowHashValue(row uint32) (model.BlobHandle, error) {
	return t.blobColumn(row, assemblyRefHashValue)
}

// CustomAttributesOf returns the CustomAttribute rows whose parent is the
// AssemblyRef row.
func (t *Tables) CustomAttributesOf(row uint32) (model.CustomAttributeSet, error) {
	if err := t.md.checkRow(TableAssemblyRef, row); err != nil {
		return model.CustomAttributeSet{}, err
	}
	return model.NewCustomAttributeSet(model.AssemblyReferenceFromRow(row), t.attrs[row]), nil
}

func (t *Tables) stringColumn(row uint32, col int) (model.StringHandle, error) {
	if err := t.md.checkRow(TableAssemblyRef, row); err != nil {
		return model.StringHandle{}, err
	}
	off := t.md.cell(TableAssemblyRef, row, col)
	if !t.md.validString(off) {
		return model.StringHandle{}, formatErr("AssemblyRef", int(row), ErrBadHeapOffset)
	}
	return model.StringFromOffset(off), nil
}

func (t *Tables) blobColumn(row uint32, col int) (model.BlobHandle, error) {
	if err := t.md.checkRow(TableAssemblyRef, row); err != nil {
		return model.BlobHandle{}, err
	}
	off := t.md.cell(TableAssemblyRef, row, col)
	if !t.md.validBlob(off) {
		return model.BlobHandle{}, formatErr("AssemblyRef", int(row), ErrBadHeapOffset)
	}
	return model.BlobFromOffset(off), nil
}
