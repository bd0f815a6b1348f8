package asmref

import (
	"github.com/hupe1980/asmref/internal/ecma"
	"github.com/hupe1980/asmref/model"
	"github.com/hupe1980/asmref/winrt"
)

// RowAccessor reads authored AssemblyRef rows. Rows are 1-based.
//
// Implementations must be safe for concurrent use. Errors are returned to
// Session callers unchanged.
type RowAccessor interface {
	RowCount() uint32
	RowVersion(row uint32) (model.Version, error)
	RowFlags(row uint32) (model.AssemblyFlags, error)
	RowName(row uint32) (model.StringHandle, error)
	RowCulture(row uint32) (model.StringHandle, error)
	RowPublicKeyOrToken(row uint32) (model.BlobHandle, error)
	RowHashValue(row uint32) (model.BlobHandle, error)
	CustomAttributesOf(row uint32) (model.CustomAttributeSet, error)
	// AnchorRow returns the mscorlib row of projected metadata, or 0.
	AnchorRow() (uint32, error)
}

var _ RowAccessor = (*ecma.Tables)(nil)

// Session answers attribute queries for assembly reference handles.
//
// Physical handles are read through the RowAccessor. Virtual handles, which
// only exist when the metadata is projected, are computed by a
// winrt.Resolver from the anchor row.
//
// A Session is immutable and safe for concurrent use.
type Session struct {
	rows     RowAccessor
	anchor   uint32
	resolver winrt.Resolver
	metrics  MetricsCollector
}

// NewSession binds a session to rows. The anchor row is read once; an error
// from AnchorRow is returned unchanged. With WithoutProjections the anchor
// is ignored and the session is not projected.
func NewSession(rows RowAccessor, optFns ...Option) (*Session, error) {
	o := applyOptions(optFns)

	var anchor uint32
	if o.project {
		a, err := rows.AnchorRow()
		if err != nil {
			return nil, err
		}
		if a > rows.RowCount() {
			panic(model.Invariantf("asmref.NewSession", "anchor row %d beyond %d rows", a, rows.RowCount()))
		}
		anchor = a
	}

	return &Session{
		rows:     rows,
		anchor:   anchor,
		resolver: winrt.NewResolver(rows, anchor),
		metrics:  o.metricsCollector,
	}, nil
}

// Projected reports whether the session enumerates virtual references.
func (s *Session) Projected() bool { return s.anchor != 0 }

// Anchor returns the anchor row, or 0 for an unprojected session.
func (s *Session) Anchor() uint32 { return s.anchor }

// Handles returns the physical references in row order followed, for a
// projected session, by the virtual references in slot order.
func (s *Session) Handles() []model.AssemblyReferenceHandle {
	n := s.rows.RowCount()
	out := make([]model.AssemblyReferenceHandle, 0, int(n)+winrt.Count)
	for row := uint32(1); row <= n; row++ {
		out = append(out, model.AssemblyReferenceFromRow(row))
	}
	if s.Projected() {
		for _, ix := range winrt.VirtualIndices() {
			out = append(out, model.AssemblyReferenceFromVirtualIndex(uint32(ix)))
		}
	}
	return out
}

// Version returns the reference's version. The anchor row reports 4.0.0.0.
func (s *Session) Version(h model.AssemblyReferenceHandle) (model.Version, error) {
	return resolve(s, "Version", h,
		func(ix winrt.VirtualIndex) (model.Version, error) { return s.resolver.Version(ix), nil },
		func(row uint32) (model.Version, error) {
			if row == s.anchor {
				return winrt.AnchorVersion, nil
			}
			return s.rows.RowVersion(row)
		})
}

// Flags returns the reference's flags.
func (s *Session) Flags(h model.AssemblyReferenceHandle) (model.AssemblyFlags, error) {
	return resolve(s, "Flags", h, s.resolver.Flags, s.rows.RowFlags)
}

// Name returns the handle of the reference's simple name.
func (s *Session) Name(h model.AssemblyReferenceHandle) (model.StringHandle, error) {
	return resolve(s, "Name", h,
		func(ix winrt.VirtualIndex) (model.StringHandle, error) { return s.resolver.Name(ix), nil },
		s.rows.RowName)
}

// Culture returns the handle of the reference's culture.
func (s *Session) Culture(h model.AssemblyReferenceHandle) (model.StringHandle, error) {
	return resolve(s, "Culture", h,
		func(ix winrt.VirtualIndex) (model.StringHandle, error) { return s.resolver.Culture(ix), nil },
		s.rows.RowCulture)
}

// PublicKeyOrToken returns the handle of the reference's key or key token.
func (s *Session) PublicKeyOrToken(h model.AssemblyReferenceHandle) (model.BlobHandle, error) {
	return resolve(s, "PublicKeyOrToken", h, s.resolver.PublicKeyOrToken, s.rows.RowPublicKeyOrToken)
}

// HashValue returns the handle of the reference's hash.
func (s *Session) HashValue(h model.AssemblyReferenceHandle) (model.BlobHandle, error) {
	return resolve(s, "HashValue", h,
		func(ix winrt.VirtualIndex) (model.BlobHandle, error) { return s.resolver.HashValue(ix), nil },
		s.rows.RowHashValue)
}

// CustomAttributes returns the custom attributes applied to the reference.
// Virtual references share the anchor's set.
func (s *Session) CustomAttributes(h model.AssemblyReferenceHandle) (model.CustomAttributeSet, error) {
	return resolve(s, "CustomAttributes", h, s.resolver.CustomAttributes, s.rows.CustomAttributesOf)
}

func resolve[T any](
	s *Session,
	op string,
	h model.AssemblyReferenceHandle,
	virtual func(winrt.VirtualIndex) (T, error),
	physical func(uint32) (T, error),
) (T, error) {
	if !h.Valid() {
		panic(model.Invariantf("asmref.Session."+op, "malformed handle %#08x", h.Value()))
	}

	var (
		v   T
		err error
	)
	if h.IsVirtual() {
		v, err = virtual(winrt.VirtualIndex(h.Row()))
	} else {
		v, err = physical(h.Row())
	}
	s.metrics.RecordResolve(h.IsVirtual(), err)
	return v, err
}
