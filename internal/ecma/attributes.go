package ecma

import (
	"github.com/hupe1980/asmref/model"
)

// Ref is a decoded coded index: a table and a 1-based row.
type Ref struct {
	Table TableID
	Row   uint32
}

// CustomAttribute is one row of the CustomAttribute table.
type CustomAttribute struct {
	Parent      Ref
	Constructor Ref
	Value       model.BlobHandle
}

// CustomAttribute decodes the CustomAttribute row.
func (m *Metadata) CustomAttribute(row uint32) (CustomAttribute, error) {
	if err := m.checkRow(TableCustomAttribute, row); err != nil {
		return CustomAttribute{}, err
	}
	parentTable, parentRow, ok := decodeCoded(&hasCustomAttribute, m.cell(TableCustomAttribute, row, customAttributeParentCol))
	if !ok {
		return CustomAttribute{}, formatErr("CustomAttribute.Parent", int(row), ErrUnsupportedTable)
	}
	ctorTable, ctorRow, ok := decodeCoded(&customAttributeType, m.cell(TableCustomAttribute, row, customAttributeTypeCol))
	if !ok {
		return CustomAttribute{}, formatErr("CustomAttribute.Type", int(row), ErrUnsupportedTable)
	}
	value := m.cell(TableCustomAttribute, row, customAttributeValueCol)
	if !m.validBlob(value) {
		return CustomAttribute{}, formatErr("CustomAttribute.Value", int(row), ErrBadHeapOffset)
	}
	return CustomAttribute{
		Parent:      Ref{Table: parentTable, Row: parentRow},
		Constructor: Ref{Table: ctorTable, Row: ctorRow},
		Value:       model.BlobFromOffset(value),
	}, nil
}

// AttributeType resolves the namespace and name of the type that declares
// an attribute constructor.
func (m *Metadata) AttributeType(ctor Ref) (namespace, name string, err error) {
	switch ctor.Table {
	case TableMemberRef:
		if err := m.checkRow(TableMemberRef, ctor.Row); err != nil {
			return "", "", err
		}
		class, row, ok := decodeCoded(&memberRefParent, m.cell(TableMemberRef, ctor.Row, memberRefClass))
		if !ok {
			return "", "", formatErr("MemberRef.Class", int(ctor.Row), ErrUnsupportedTable)
		}
		return m.typeName(Ref{Table: class, Row: row})
	case TableMethodDef:
		if err := m.checkRow(TableMethodDef, ctor.Row); err != nil {
			return "", "", err
		}
		owner := m.methodOwner(ctor.Row)
		if owner == 0 {
			return "", "", formatErr("MethodDef", int(ctor.Row), ErrRowOutOfRange)
		}
		return m.typeName(Ref{Table: TableTypeDef, Row: owner})
	default:
		return "", "", formatErr("CustomAttribute.Type", int(ctor.Row), ErrUnsupportedTable)
	}
}

func (m *Metadata) typeName(r Ref) (string, string, error) {
	var nsCol, nameCol int
	switch r.Table {
	case TableTypeRef:
		nsCol, nameCol = typeRefNamespace, typeRefName
	case TableTypeDef:
		nsCol, nameCol = typeDefNamespace, typeDefName
	default:
		return "", "", formatErr("type reference", int(r.Row), ErrUnsupportedTable)
	}
	if err := m.checkRow(r.Table, r.Row); err != nil {
		return "", "", err
	}
	ns, err := m.String(m.cell(r.Table, r.Row, nsCol))
	if err != nil {
		return "", "", err
	}
	name, err := m.String(m.cell(r.Table, r.Row, nameCol))
	if err != nil {
		return "", "", err
	}
	return ns, name, nil
}

// methodOwner returns the TypeDef whose method list contains method, or 0.
func (m *Metadata) methodOwner(method uint32) uint32 {
	const methodListCol = 5
	var owner uint32
	n := m.RowCount(TableTypeDef)
	for row := uint32(1); row <= n; row++ {
		if m.cell(TableTypeDef, row, methodListCol) > method {
			break
		}
		owner = row
	}
	return owner
}

// AssemblyDef is the container's own Assembly row.
type AssemblyDef struct {
	Name      string
	Culture   string
	Version   model.Version
	Flags     model.AssemblyFlags
	PublicKey []byte
}

// Assembly decodes the Assembly row. ok is false for modules without one.
func (m *Metadata) Assembly() (def AssemblyDef, ok bool, err error) {
	if m.RowCount(TableAssembly) == 0 {
		return AssemblyDef{}, false, nil
	}
	const row = 1
	def.Version = model.Version{
		Major:    uint16(m.cell(TableAssembly, row, assemblyMajor)),
		Minor:    uint16(m.cell(TableAssembly, row, assemblyMinor)),
		Build:    uint16(m.cell(TableAssembly, row, assemblyBuild)),
		Revision: uint16(m.cell(TableAssembly, row, assemblyRevision)),
	}
	def.Flags = model.AssemblyFlags(m.cell(TableAssembly, row, assemblyFlags))
	if def.Name, err = m.String(m.cell(TableAssembly, row, assemblyName)); err != nil {
		return AssemblyDef{}, false, err
	}
	if def.Culture, err = m.String(m.cell(TableAssembly, row, assemblyCulture)); err != nil {
		return AssemblyDef{}, false, err
	}
	if def.PublicKey, err = m.Blob(m.cell(TableAssembly, row, assemblyPublicKey)); err != nil {
		return AssemblyDef{}, false, err
	}
	return def, true, nil
}

// Module returns the module name and MVID from the Module row.
func (m *Metadata) Module() (name string, mvid [16]byte, err error) {
	if m.RowCount(TableModule) == 0 {
		return "", mvid, nil
	}
	const (
		nameCol = 1
		mvidCol = 2
	)
	if name, err = m.String(m.cell(TableModule, 1, nameCol)); err != nil {
		return "", mvid, err
	}
	mvid, err = m.GUID(m.cell(TableModule, 1, mvidCol))
	return name, mvid, err
}
