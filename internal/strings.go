package internal

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// CodePage is the single-byte code page used for non-Unicode strings.
var CodePage = charmap.Windows1252

// ReadString reads a NUL-terminated code page string starting at start. An
// unterminated string runs to the end of data.
func ReadString(data []byte, start int) string {
	if start < 0 || start >= len(data) {
		return ""
	}
	end := start
	for end < len(data) && data[end] != 0 {
		end++
	}
	return DecodeString(data[start:end])
}

// DecodeString decodes raw code page bytes.
func DecodeString(data []byte) string {
	decoded, err := CodePage.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ReadUnicode reads a NUL-terminated UTF-16LE string starting at start.
func ReadUnicode(data []byte, start int) string {
	if start < 0 || start >= len(data) {
		return ""
	}
	encoded := []uint16{}
	for offset := start; offset+2 <= len(data); offset += 2 {
		value := binary.LittleEndian.Uint16(data[offset : offset+2])
		if value == 0 {
			break
		}
		encoded = append(encoded, value)
	}
	return string(utf16.Decode(encoded))
}

// DecodeUnicode decodes a UTF-16LE buffer without looking for a terminator.
// A trailing odd byte is ignored.
func DecodeUnicode(data []byte) string {
	encoded := make([]uint16, len(data)/2)
	for i := range encoded {
		encoded[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return string(utf16.Decode(encoded))
}
