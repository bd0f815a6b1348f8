package pe

import (
	"bytes"
	"encoding/binary"
)

const (
	fileAlignment    = 0x200
	sectionAlignment = 0x2000
	lfanew           = 0x80
	textRVA          = 0x2000
)

// Wrap embeds a metadata root in a minimal PE32 image with a single .text
// section. The result is accepted by Locate.
func Wrap(metadata []byte) []byte {
	rawSize := alignUp(cliHeaderSize+len(metadata), fileAlignment)

	var buf bytes.Buffer
	le := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	dos := make([]byte, lfanew)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3C:], lfanew)
	buf.Write(dos)

	buf.WriteString("PE\x00\x00")
	le(struct {
		Machine              uint16
		NumberOfSections     uint16
		TimeDateStamp        uint32
		PointerToSymbolTable uint32
		NumberOfSymbols      uint32
		SizeOfOptionalHeader uint16
		Characteristics      uint16
	}{0x14C, 1, 0, 0, 0, 0xE0, 0x2102})

	var dirs [16][2]uint32
	dirs[clrDirectory] = [2]uint32{textRVA, cliHeaderSize}
	le(struct {
		Magic                   uint16
		LinkerVersion           [2]uint8
		SizeOfCode              uint32
		SizeOfInitializedData   uint32
		SizeOfUninitializedData uint32
		AddressOfEntryPoint     uint32
		BaseOfCode              uint32
		BaseOfData              uint32
		ImageBase               uint32
		SectionAlignment        uint32
		FileAlignment           uint32
		OSVersion               [2]uint16
		ImageVersion            [2]uint16
		SubsystemVersion        [2]uint16
		Win32VersionValue       uint32
		SizeOfImage             uint32
		SizeOfHeaders           uint32
		CheckSum                uint32
		Subsystem               uint16
		DllCharacteristics      uint16
		StackReserve            uint32
		StackCommit             uint32
		HeapReserve             uint32
		HeapCommit              uint32
		LoaderFlags             uint32
		NumberOfRvaAndSizes     uint32
		DataDirectory           [16][2]uint32
	}{
		Magic:               0x10B,
		SizeOfCode:          uint32(rawSize),
		BaseOfCode:          textRVA,
		ImageBase:           0x10000000,
		SectionAlignment:    sectionAlignment,
		FileAlignment:       fileAlignment,
		OSVersion:           [2]uint16{4, 0},
		SubsystemVersion:    [2]uint16{4, 0},
		SizeOfImage:         uint32(textRVA + alignUp(rawSize, sectionAlignment)),
		SizeOfHeaders:       fileAlignment,
		Subsystem:           3,
		NumberOfRvaAndSizes: 16,
		DataDirectory:       dirs,
	})

	le(struct {
		Name                 [8]byte
		VirtualSize          uint32
		VirtualAddress       uint32
		SizeOfRawData        uint32
		PointerToRawData     uint32
		PointerToRelocations uint32
		PointerToLinenumbers uint32
		NumberOfRelocations  uint16
		NumberOfLinenumbers  uint16
		Characteristics      uint32
	}{
		Name:             [8]byte{'.', 't', 'e', 'x', 't'},
		VirtualSize:      uint32(cliHeaderSize + len(metadata)),
		VirtualAddress:   textRVA,
		SizeOfRawData:    uint32(rawSize),
		PointerToRawData: fileAlignment,
		Characteristics:  0x60000020,
	})
	buf.Write(make([]byte, fileAlignment-buf.Len()))

	cli := make([]byte, cliHeaderSize)
	binary.LittleEndian.PutUint32(cli[0:], cliHeaderSize)
	binary.LittleEndian.PutUint16(cli[4:], 2)
	binary.LittleEndian.PutUint16(cli[6:], 5)
	binary.LittleEndian.PutUint32(cli[8:], textRVA+cliHeaderSize)
	binary.LittleEndian.PutUint32(cli[12:], uint32(len(metadata)))
	binary.LittleEndian.PutUint32(cli[16:], 1) // COMIMAGE_FLAGS_ILONLY
	buf.Write(cli)
	buf.Write(metadata)
	buf.Write(make([]byte, rawSize-cliHeaderSize-len(metadata)))
	return buf.Bytes()
}

func alignUp(n, a int) int { return (n + a - 1) / a * a }
