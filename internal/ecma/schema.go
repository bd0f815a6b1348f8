package ecma

// TableID identifies a metadata table (ECMA-335 II.22).
type TableID uint8

const (
	TableModule                 TableID = 0x00
	TableTypeRef                TableID = 0x01
	TableTypeDef                TableID = 0x02
	TableFieldPtr               TableID = 0x03
	TableField                  TableID = 0x04
	TableMethodPtr              TableID = 0x05
	TableMethodDef              TableID = 0x06
	TableParamPtr               TableID = 0x07
	TableParam                  TableID = 0x08
	TableInterfaceImpl          TableID = 0x09
	TableMemberRef              TableID = 0x0A
	TableConstant               TableID = 0x0B
	TableCustomAttribute        TableID = 0x0C
	TableFieldMarshal           TableID = 0x0D
	TableDeclSecurity           TableID = 0x0E
	TableClassLayout            TableID = 0x0F
	TableFieldLayout            TableID = 0x10
	TableStandAloneSig          TableID = 0x11
	TableEventMap               TableID = 0x12
	TableEventPtr               TableID = 0x13
	TableEvent                  TableID = 0x14
	TablePropertyMap            TableID = 0x15
	TablePropertyPtr            TableID = 0x16
	TableProperty               TableID = 0x17
	TableMethodSemantics        TableID = 0x18
	TableMethodImpl             TableID = 0x19
	TableModuleRef              TableID = 0x1A
	TableTypeSpec               TableID = 0x1B
	TableImplMap                TableID = 0x1C
	TableFieldRVA               TableID = 0x1D
	TableEncLog                 TableID = 0x1E
	TableEncMap                 TableID = 0x1F
	TableAssembly               TableID = 0x20
	TableAssemblyProcessor      TableID = 0x21
	TableAssemblyOS             TableID = 0x22
	TableAssemblyRef            TableID = 0x23
	TableAssemblyRefProcessor   TableID = 0x24
	TableAssemblyRefOS          TableID = 0x25
	TableFile                   TableID = 0x26
	TableExportedType           TableID = 0x27
	TableManifestResource       TableID = 0x28
	TableNestedClass            TableID = 0x29
	TableGenericParam           TableID = 0x2A
	TableMethodSpec             TableID = 0x2B
	TableGenericParamConstraint TableID = 0x2C

	tableCount = 0x2D
)

// noTable fills unused tags of a coded index.
const noTable TableID = 0xFF

// codedIndex describes a coded index column: the tag width and the tables
// each tag value refers to.
type codedIndex struct {
	bits   uint
	tables []TableID
}

var (
	typeDefOrRef = codedIndex{2, []TableID{TableTypeDef, TableTypeRef, TableTypeSpec}}
	hasConstant  = codedIndex{2, []TableID{TableField, TableParam, TableProperty}}

	hasCustomAttribute = codedIndex{5, []TableID{
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
		TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
		TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
		TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec,
	}}

	hasFieldMarshal     = codedIndex{1, []TableID{TableField, TableParam}}
	hasDeclSecurity     = codedIndex{2, []TableID{TableTypeDef, TableMethodDef, TableAssembly}}
	memberRefParent     = codedIndex{3, []TableID{TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec}}
	hasSemantics        = codedIndex{1, []TableID{TableEvent, TableProperty}}
	methodDefOrRef      = codedIndex{1, []TableID{TableMethodDef, TableMemberRef}}
	memberForwarded     = codedIndex{1, []TableID{TableField, TableMethodDef}}
	implementation      = codedIndex{2, []TableID{TableFile, TableAssemblyRef, TableExportedType}}
	customAttributeType = codedIndex{3, []TableID{noTable, noTable, TableMethodDef, TableMemberRef, noTable}}
	resolutionScope     = codedIndex{2, []TableID{TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef}}
	typeOrMethodDef     = codedIndex{1, []TableID{TableTypeDef, TableMethodDef}}
)

// hasCustomAttributeAssemblyRef is the HasCustomAttribute tag of AssemblyRef.
const hasCustomAttributeAssemblyRef = 15

type colKind uint8

const (
	colU8 colKind = iota
	colU16
	colU32
	colString
	colGUID
	colBlob
	colTable
	colCoded
)

type column struct {
	kind  colKind
	table TableID
	coded *codedIndex
}

var (
	u16   = column{kind: colU16}
	u32   = column{kind: colU32}
	str   = column{kind: colString}
	guid  = column{kind: colGUID}
	blob  = column{kind: colBlob}
	pad2  = column{kind: colU16} // 1-byte value plus 1 byte padding
	idx   = func(t TableID) column { return column{kind: colTable, table: t} }
	coded = func(c *codedIndex) column { return column{kind: colCoded, coded: c} }
)

// schema lists the columns of every table in row order.
var schema = [tableCount][]column{
	TableModule:                 {u16, str, guid, guid, guid},
	TableTypeRef:                {coded(&resolutionScope), str, str},
	TableTypeDef:                {u32, str, str, coded(&typeDefOrRef), idx(TableField), idx(TableMethodDef)},
	TableFieldPtr:               {idx(TableField)},
	TableField:                  {u16, str, blob},
	TableMethodPtr:              {idx(TableMethodDef)},
	TableMethodDef:              {u32, u16, u16, str, blob, idx(TableParam)},
	TableParamPtr:               {idx(TableParam)},
	TableParam:                  {u16, u16, str},
	TableInterfaceImpl:          {idx(TableTypeDef), coded(&typeDefOrRef)},
	TableMemberRef:              {coded(&memberRefParent), str, blob},
	TableConstant:               {pad2, coded(&hasConstant), blob},
	TableCustomAttribute:        {coded(&hasCustomAttribute), coded(&customAttributeType), blob},
	TableFieldMarshal:           {coded(&hasFieldMarshal), blob},
	TableDeclSecurity:           {u16, coded(&hasDeclSecurity), blob},
	TableClassLayout:            {u16, u32, idx(TableTypeDef)},
	TableFieldLayout:            {u32, idx(TableField)},
	TableStandAloneSig:          {blob},
	TableEventMap:               {idx(TableTypeDef), idx(TableEvent)},
	TableEventPtr:               {idx(TableEvent)},
	TableEvent:                  {u16, str, coded(&typeDefOrRef)},
	TablePropertyMap:            {idx(TableTypeDef), idx(TableProperty)},
	TablePropertyPtr:            {idx(TableProperty)},
	TableProperty:               {u16, str, blob},
	TableMethodSemantics:        {u16, idx(TableMethodDef), coded(&hasSemantics)},
	TableMethodImpl:             {idx(TableTypeDef), coded(&methodDefOrRef), coded(&methodDefOrRef)},
	TableModuleRef:              {str},
	TableTypeSpec:               {blob},
	TableImplMap:                {u16, coded(&memberForwarded), str, idx(TableModuleRef)},
	TableFieldRVA:               {u32, idx(TableField)},
	TableEncLog:                 {u32, u32},
	TableEncMap:                 {u32},
	TableAssembly:               {u32, u16, u16, u16, u16, u32, blob, str, str},
	TableAssemblyProcessor:      {u32},
	TableAssemblyOS:             {u32, u32, u32},
	TableAssemblyRef:            {u16, u16, u16, u16, u32, blob, str, str, blob},
	TableAssemblyRefProcessor:   {u32, idx(TableAssemblyRef)},
	TableAssemblyRefOS:          {u32, u32, u32, idx(TableAssemblyRef)},
	TableFile:                   {u32, str, blob},
	TableExportedType:           {u32, u32, str, str, coded(&implementation)},
	TableManifestResource:       {u32, u32, str, coded(&implementation)},
	TableNestedClass:            {idx(TableTypeDef), idx(TableTypeDef)},
	TableGenericParam:           {u16, u16, coded(&typeOrMethodDef), str},
	TableMethodSpec:             {coded(&methodDefOrRef), blob},
	TableGenericParamConstraint: {idx(TableGenericParam), coded(&typeDefOrRef)},
}

// Column positions used by the readers.
const (
	assemblyRefMajor            = 0
	assemblyRefMinor            = 1
	assemblyRefBuild            = 2
	assemblyRefRevision         = 3
	assemblyRefFlags            = 4
	assemblyRefPublicKeyOrToken = 5
	assemblyRefName             = 6
	assemblyRefCulture          = 7
	assemblyRefHashValue        = 8

	assemblyMajor     = 1
	assemblyMinor     = 2
	assemblyBuild     = 3
	assemblyRevision  = 4
	assemblyFlags     = 5
	assemblyPublicKey = 6
	assemblyName      = 7
	assemblyCulture   = 8

	customAttributeParentCol = 0
	customAttributeTypeCol   = 1
	customAttributeValueCol  = 2

	memberRefClass = 0
	memberRefName  = 1

	typeRefName      = 1
	typeRefNamespace = 2

	typeDefName      = 1
	typeDefNamespace = 2
)

// layout is the resolved byte geometry of one table.
type layout struct {
	rows    uint32
	rowSize int
	offset  int // from the start of the table data
	widths  []int
	offsets []int
}

func (c column) width(rows *[tableCount]uint32, heapSizes uint8) int {
	switch c.kind {
	case colU8:
		return 1
	case colU16:
		return 2
	case colU32:
		return 4
	case colString:
		return heapWidth(heapSizes, heapSizeStrings)
	case colGUID:
		return heapWidth(heapSizes, heapSizeGUID)
	case colBlob:
		return heapWidth(heapSizes, heapSizeBlob)
	case colTable:
		if rows[c.table] < 1<<16 {
			return 2
		}
		return 4
	case colCoded:
		limit := uint32(1) << (16 - c.coded.bits)
		for _, t := range c.coded.tables {
			if t != noTable && rows[t] >= limit {
				return 4
			}
		}
		return 2
	}
	return 0
}

func heapWidth(heapSizes, bit uint8) int {
	if heapSizes&bit != 0 {
		return 4
	}
	return 2
}

// decodeCoded splits a coded index value into its table and row.
func decodeCoded(c *codedIndex, v uint32) (TableID, uint32, bool) {
	tag := v & (1<<c.bits - 1)
	if int(tag) >= len(c.tables) || c.tables[tag] == noTable {
		return 0, 0, false
	}
	return c.tables[tag], v >> c.bits, true
}
