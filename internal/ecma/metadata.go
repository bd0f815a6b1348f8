package ecma

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"

	"github.com/hupe1980/asmref/internal/conv"
	"github.com/hupe1980/asmref/model"
)

const (
	metadataSignature = 0x424A5342 // "BSJB"

	heapSizeStrings uint8 = 0x01
	heapSizeGUID    uint8 = 0x02
	heapSizeBlob    uint8 = 0x04
	heapExtraData   uint8 = 0x40

	maxStreamName = 32
)

// Kind classifies a metadata container by its version string.
type Kind uint8

const (
	// Ecma335 is plain CLI metadata.
	Ecma335 Kind = iota
	// WindowsMetadata is a .winmd produced by the Windows Runtime toolchain.
	WindowsMetadata
	// ManagedWindowsMetadata is a .winmd produced by a managed compiler.
	ManagedWindowsMetadata
)

func (k Kind) String() string {
	switch k {
	case WindowsMetadata:
		return "WindowsMetadata"
	case ManagedWindowsMetadata:
		return "ManagedWindowsMetadata"
	default:
		return "Ecma335"
	}
}

func kindOf(version string) Kind {
	if !strings.Contains(version, "WindowsRuntime") {
		return Ecma335
	}
	if strings.Contains(version, "CLR") {
		return ManagedWindowsMetadata
	}
	return WindowsMetadata
}

// Metadata is a parsed, read-only view over a metadata root.
//
// All accessors are safe for concurrent use. The underlying bytes are
// borrowed and must outlive the Metadata.
type Metadata struct {
	version string
	kind    Kind

	strings []byte
	blobs   []byte
	guids   []byte

	heapSizes uint8
	sorted    uint64
	tableData []byte
	tables    [tableCount]layout
}

// Open parses the metadata root at the start of data.
func Open(data []byte) (*Metadata, error) {
	if len(data) < 16 {
		return nil, formatErr("metadata root", 0, ErrTruncated)
	}
	if binary.LittleEndian.Uint32(data) != metadataSignature {
		return nil, formatErr("metadata root", 0, ErrBadSignature)
	}

	length, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[12:]))
	if err != nil {
		return nil, formatErr("version string", 12, err)
	}
	if 16+length > len(data) {
		return nil, formatErr("version string", 16, ErrTruncated)
	}
	raw := data[16 : 16+length]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}

	m := &Metadata{version: string(raw)}
	m.kind = kindOf(m.version)

	pos := 16 + align4(length)
	if pos+4 > len(data) {
		return nil, formatErr("stream headers", pos, ErrTruncated)
	}
	streams := int(binary.LittleEndian.Uint16(data[pos+2:]))
	pos += 4

	var tableStream []byte
	for i := 0; i < streams; i++ {
		if pos+8 > len(data) {
			return nil, formatErr("stream header", pos, ErrTruncated)
		}
		offset, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[pos:]))
		if err != nil {
			return nil, formatErr("stream header", pos, err)
		}
		size, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(data[pos+4:]))
		if err != nil {
			return nil, formatErr("stream header", pos+4, err)
		}
		pos += 8

		nameEnd := bytes.IndexByte(data[pos:min(pos+maxStreamName, len(data))], 0)
		if nameEnd < 0 {
			return nil, formatErr("stream name", pos, ErrTruncated)
		}
		name := string(data[pos : pos+nameEnd])
		pos += align4(nameEnd + 1)

		if offset+size > len(data) {
			return nil, formatErr("stream "+name, offset, ErrTruncated)
		}
		body := data[offset : offset+size]

		switch name {
		case "#~", "#-":
			tableStream = body
		case "#Strings":
			m.strings = body
		case "#Blob":
			m.blobs = body
		case "#GUID":
			m.guids = body
		}
	}

	if tableStream == nil {
		return nil, formatErr("table stream", pos, ErrMissingStream)
	}
	if len(m.strings) > model.MaxHeapOffset {
		return nil, formatErr("#Strings", 0, ErrHeapTooLarge)
	}
	if len(m.blobs) > model.MaxHeapOffset {
		return nil, formatErr("#Blob", 0, ErrHeapTooLarge)
	}

	if err := m.parseTables(tableStream); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metadata) parseTables(s []byte) error {
	if len(s) < 24 {
		return formatErr("table stream header", 0, ErrTruncated)
	}
	m.heapSizes = s[6]
	valid := binary.LittleEndian.Uint64(s[8:])
	m.sorted = binary.LittleEndian.Uint64(s[16:])

	pos := 24
	var rows [tableCount]uint32
	for v := valid; v != 0; v &= v - 1 {
		t := bits.TrailingZeros64(v)
		if t >= tableCount {
			return formatErr("table stream header", 8, ErrUnsupportedTable)
		}
		if pos+4 > len(s) {
			return formatErr("row counts", pos, ErrTruncated)
		}
		n := binary.LittleEndian.Uint32(s[pos:])
		if n > model.MaxRowID {
			return formatErr("row counts", pos, ErrTooManyRows)
		}
		rows[t] = n
		pos += 4
	}
	if m.heapSizes&heapExtraData != 0 {
		pos += 4
	}

	offset := 0
	for t := 0; t < tableCount; t++ {
		cols := schema[t]
		l := layout{
			rows:    rows[t],
			offset:  offset,
			widths:  make([]int, len(cols)),
			offsets: make([]int, len(cols)),
		}
		for i, c := range cols {
			l.offsets[i] = l.rowSize
			l.widths[i] = c.width(&rows, m.heapSizes)
			l.rowSize += l.widths[i]
		}
		offset += l.rowSize * int(l.rows)
		m.tables[t] = l
	}

	if pos > len(s) || pos+offset > len(s) {
		return formatErr("table data", pos, ErrTruncated)
	}
	m.tableData = s[pos : pos+offset]
	return nil
}

// Version returns the metadata version string, e.g. "WindowsRuntime 1.4".
func (m *Metadata) Version() string { return m.version }

// Kind returns the container flavour derived from the version string.
func (m *Metadata) Kind() Kind { return m.kind }

// RowCount returns the number of rows in table t.
func (m *Metadata) RowCount(t TableID) uint32 {
	if int(t) >= tableCount {
		return 0
	}
	return m.tables[t].rows
}

// IsSorted reports whether table t is flagged as sorted.
func (m *Metadata) IsSorted(t TableID) bool { return m.sorted&(1<<t) != 0 }

// cell reads column col of row (1-based) in table t. The row must be in range.
func (m *Metadata) cell(t TableID, row uint32, col int) uint32 {
	l := &m.tables[t]
	off := l.offset + int(row-1)*l.rowSize + l.offsets[col]
	switch l.widths[col] {
	case 1:
		return uint32(m.tableData[off])
	case 2:
		return uint32(binary.LittleEndian.Uint16(m.tableData[off:]))
	default:
		return binary.LittleEndian.Uint32(m.tableData[off:])
	}
}

func (m *Metadata) checkRow(t TableID, row uint32) error {
	if row == 0 || row > m.tables[t].rows {
		return &RowError{Table: t, Row: row}
	}
	return nil
}

// RowError reports an access past the end of a table.
type RowError struct {
	Table TableID
	Row   uint32
}

func (e *RowError) Error() string {
	return fmt.Sprintf("ecma: row %d out of range for table %#02x", e.Row, uint8(e.Table))
}

func (e *RowError) Unwrap() error { return ErrRowOutOfRange }

func align4(n int) int { return (n + 3) &^ 3 }
