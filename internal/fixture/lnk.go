package fixture

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

const (
	hasLinkTargetIDList = 1 << 0
	hasLinkInfo         = 1 << 1
	hasName             = 1 << 2
	hasRelativePath     = 1 << 3
	hasWorkingDir       = 1 << 4
	hasArguments        = 1 << 5
	hasIconLocation     = 1 << 6
	isUnicode           = 1 << 7
)

// Link describes a Shell Link to build. Empty strings are omitted along with
// their flags.
type Link struct {
	Unicode bool
	IDList  []byte

	LocalBasePath    string
	NetName          string
	CommonPathSuffix string

	Name         string
	RelativePath string
	WorkingDir   string
	Arguments    string
	IconLocation string
	IconIndex    int32

	EnvironmentTarget string
	// Trailing is appended after the terminal block.
	Trailing []byte
}

// LNK encodes the link.
func LNK(link Link) []byte {
	var flags uint32
	var body bytes.Buffer

	if link.IDList != nil {
		flags |= hasLinkTargetIDList
		_ = binary.Write(&body, binary.LittleEndian, uint16(len(link.IDList)))
		body.Write(link.IDList)
	}
	if link.LocalBasePath != "" || link.NetName != "" {
		flags |= hasLinkInfo
		body.Write(linkInfo(link))
	}
	if link.Unicode {
		flags |= isUnicode
	}
	for _, field := range []struct {
		flag  uint32
		value string
	}{
		{hasName, link.Name},
		{hasRelativePath, link.RelativePath},
		{hasWorkingDir, link.WorkingDir},
		{hasArguments, link.Arguments},
		{hasIconLocation, link.IconLocation},
	} {
		if field.value == "" {
			continue
		}
		flags |= field.flag
		if link.Unicode {
			encoded := utf16.Encode([]rune(field.value))
			_ = binary.Write(&body, binary.LittleEndian, uint16(len(encoded)))
			_ = binary.Write(&body, binary.LittleEndian, encoded)
		} else {
			encoded := codePage(field.value)
			_ = binary.Write(&body, binary.LittleEndian, uint16(len(encoded)))
			body.Write(encoded)
		}
	}
	if link.EnvironmentTarget != "" {
		block := make([]byte, 0x314)
		binary.LittleEndian.PutUint32(block[0:4], 0x314)
		binary.LittleEndian.PutUint32(block[4:8], 0xA0000001)
		copy(block[8:268], codePage(link.EnvironmentTarget))
		copy(block[268:788], unicode(link.EnvironmentTarget))
		body.Write(block)
	}
	body.Write([]byte{0, 0, 0, 0})
	body.Write(link.Trailing)

	header := make([]byte, 0x4C)
	binary.LittleEndian.PutUint32(header[0:4], 0x4C)
	copy(header[4:20], []byte{
		0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
	})
	binary.LittleEndian.PutUint32(header[20:24], flags)
	binary.LittleEndian.PutUint32(header[24:28], 0x20)
	binary.LittleEndian.PutUint32(header[56:60], uint32(link.IconIndex))
	binary.LittleEndian.PutUint32(header[60:64], 1)

	return append(header, body.Bytes()...)
}

// LinkInfo with the optional Unicode offsets when the link is Unicode.
func linkInfo(link Link) []byte {
	headerSize := 0x1C
	if link.Unicode {
		headerSize = 0x24
	}
	var flags uint32
	offsets := make([]uint32, 6)
	var body bytes.Buffer
	cursor := func() uint32 { return uint32(headerSize + body.Len()) }

	if link.LocalBasePath != "" {
		flags |= 1
		offsets[0] = cursor()
		volume := make([]byte, 0x11)
		binary.LittleEndian.PutUint32(volume[0:4], 0x11)
		binary.LittleEndian.PutUint32(volume[4:8], 3)
		binary.LittleEndian.PutUint32(volume[8:12], 0x1234abcd)
		binary.LittleEndian.PutUint32(volume[12:16], 0x10)
		body.Write(volume)

		offsets[1] = cursor()
		body.Write(append(codePage(link.LocalBasePath), 0))
	}
	if link.NetName != "" {
		flags |= 2
		offsets[2] = cursor()
		network := make([]byte, 0x14)
		binary.LittleEndian.PutUint32(network[8:12], 0x14)
		name := append(codePage(link.NetName), 0)
		binary.LittleEndian.PutUint32(network[0:4], uint32(len(network)+len(name)))
		body.Write(network)
		body.Write(name)
	}
	offsets[3] = cursor()
	body.Write(append(codePage(link.CommonPathSuffix), 0))

	if link.Unicode {
		if link.LocalBasePath != "" {
			offsets[4] = cursor()
			body.Write(append(unicode(link.LocalBasePath), 0, 0))
		}
		offsets[5] = cursor()
		body.Write(append(unicode(link.CommonPathSuffix), 0, 0))
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(headerSize+body.Len()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(headerSize))
	binary.LittleEndian.PutUint32(header[8:12], flags)
	binary.LittleEndian.PutUint32(header[12:16], offsets[0])
	binary.LittleEndian.PutUint32(header[16:20], offsets[1])
	binary.LittleEndian.PutUint32(header[20:24], offsets[2])
	binary.LittleEndian.PutUint32(header[24:28], offsets[3])
	if link.Unicode {
		binary.LittleEndian.PutUint32(header[28:32], offsets[4])
		binary.LittleEndian.PutUint32(header[32:36], offsets[5])
	}
	return append(header, body.Bytes()...)
}

func codePage(value string) []byte {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(value))
	if err != nil {
		panic(err)
	}
	return encoded
}

func unicode(value string) []byte {
	encoded := utf16.Encode([]rune(value))
	data := make([]byte, len(encoded)*2)
	for i, v := range encoded {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	return data
}
