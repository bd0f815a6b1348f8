package model

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// CustomAttributeSet is the set of CustomAttribute rows attached to an
// assembly reference. It is a read-only view into the session's index; the
// underlying bitmap is shared and must never be modified.
type CustomAttributeSet struct {
	owner AssemblyReferenceHandle
	rows  *roaring.Bitmap
}

// NewCustomAttributeSet wraps rows (CustomAttribute row ids) owned by owner.
// A nil bitmap is an empty set.
func NewCustomAttributeSet(owner AssemblyReferenceHandle, rows *roaring.Bitmap) CustomAttributeSet {
	return CustomAttributeSet{owner: owner, rows: rows}
}

// Owner returns the assembly reference the attributes are attached to.
// For sets shared by virtual references this is the anchor row.
func (s CustomAttributeSet) Owner() AssemblyReferenceHandle { return s.owner }

// Len returns the number of attributes in the set.
func (s CustomAttributeSet) Len() int {
	if s.rows == nil {
		return 0
	}
	return int(s.rows.GetCardinality())
}

// Contains reports whether the CustomAttribute row is in the set.
func (s CustomAttributeSet) Contains(row uint32) bool {
	return s.rows != nil && s.rows.Contains(row)
}

// Rows iterates CustomAttribute row ids in ascending order.
func (s CustomAttributeSet) Rows() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if s.rows == nil {
			return
		}
		it := s.rows.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Equal reports whether s and other view the same attributes of the same owner.
func (s CustomAttributeSet) Equal(other CustomAttributeSet) bool {
	if s.owner != other.owner {
		return false
	}
	if s.rows == other.rows {
		return true
	}
	if s.rows == nil || other.rows == nil {
		return s.Len() == 0 && other.Len() == 0
	}
	return s.rows.Equals(other.rows)
}
