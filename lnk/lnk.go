// Package lnk parses Windows Shell Link (.lnk) files.
package lnk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/andrewstucki/seedicon/internal"
)

const headerSize = 0x0000004C

// 00021401-0000-0000-C000-000000000046
var linkCLSID = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

var (
	// ErrInvalidHeader is returned when the data does not start with a
	// Shell Link header.
	ErrInvalidHeader = errors.New("invalid shell link header")
	// ErrTruncated is returned when a structure runs past the end of the data.
	ErrTruncated = errors.New("truncated shell link")
)

// Flags are the LinkFlags of a Shell Link header.
type Flags uint32

const (
	HasLinkTargetIDList Flags = 1 << iota
	HasLinkInfo
	HasName
	HasRelativePath
	HasWorkingDir
	HasArguments
	HasIconLocation
	IsUnicode
	ForceNoLinkInfo
	HasExpString
	RunInSeparateProcess
	_
	HasDarwinID
	RunAsUser
	HasExpIcon
)

// Has reports whether all of the given flags are set.
func (f Flags) Has(flags Flags) bool {
	return f&flags == flags
}

// Environment holds the target path of an EnvironmentVariableDataBlock.
type Environment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// IconEnvironment holds the icon path of an IconEnvironmentDataBlock.
type IconEnvironment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Darwin holds the application identifier of a DarwinDataBlock.
type Darwin struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Shim holds the shim layer name of a ShimDataBlock.
type Shim struct {
	LayerName string `json:"layerName"`
}

// Info contains the parsed contents of a Shell Link.
type Info struct {
	Flags          Flags     `json:"flags"`
	FileAttributes uint32    `json:"fileAttributes"`
	CreationTime   time.Time `json:"creationTime"`
	AccessTime     time.Time `json:"accessTime"`
	WriteTime      time.Time `json:"writeTime"`
	FileSize       uint32    `json:"fileSize"`
	IconIndex      int32     `json:"iconIndex"`
	ShowCommand    uint32    `json:"showCommand"`
	HotKey         uint16    `json:"hotKey"`

	LinkInfo *LinkInfo `json:"linkInfo,omitempty"`

	Name         string `json:"name,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`
	WorkingDir   string `json:"workingDir,omitempty"`
	Arguments    string `json:"arguments,omitempty"`
	IconLocation string `json:"iconLocation,omitempty"`

	Environment     *Environment     `json:"environment,omitempty"`
	IconEnvironment *IconEnvironment `json:"iconEnvironment,omitempty"`
	Darwin          *Darwin          `json:"darwin,omitempty"`
	Shim            *Shim            `json:"shim,omitempty"`
}

// Target returns the path the link points at, preferring the LinkInfo paths
// over the environment variable block. It is empty when the link declares
// no target.
func (i *Info) Target() string {
	if i.LinkInfo != nil {
		if target := i.LinkInfo.Target(); target != "" {
			return target
		}
	}
	if i.Environment != nil {
		if i.Environment.Unicode != "" {
			return i.Environment.Unicode
		}
		return i.Environment.ANSI
	}
	return ""
}

// Parse parses a Shell Link. Strings that are not stored as Unicode are
// decoded with internal.CodePage.
func Parse(data []byte) (*Info, error) {
	if len(data) < headerSize ||
		binary.LittleEndian.Uint32(data[0:4]) != headerSize ||
		!bytes.Equal(data[4:20], linkCLSID) {
		return nil, ErrInvalidHeader
	}

	info := &Info{
		Flags:          Flags(binary.LittleEndian.Uint32(data[20:24])),
		FileAttributes: binary.LittleEndian.Uint32(data[24:28]),
		CreationTime:   internal.ReadFiletime(data[28:36]).Time(),
		AccessTime:     internal.ReadFiletime(data[36:44]).Time(),
		WriteTime:      internal.ReadFiletime(data[44:52]).Time(),
		FileSize:       binary.LittleEndian.Uint32(data[52:56]),
		IconIndex:      int32(binary.LittleEndian.Uint32(data[56:60])),
		ShowCommand:    binary.LittleEndian.Uint32(data[60:64]),
		HotKey:         binary.LittleEndian.Uint16(data[64:66]),
	}

	offset := headerSize
	if info.Flags.Has(HasLinkTargetIDList) {
		if len(data) < offset+2 {
			return nil, ErrTruncated
		}
		// the IDList is skipped, targets come from LinkInfo or ExtraData
		offset += 2 + int(binary.LittleEndian.Uint16(data[offset:offset+2]))
		if len(data) < offset {
			return nil, ErrTruncated
		}
	}

	if info.Flags.Has(HasLinkInfo) && !info.Flags.Has(ForceNoLinkInfo) {
		linkInfo, size, err := parseLinkInfo(data[offset:])
		if err != nil {
			return nil, err
		}
		info.LinkInfo = linkInfo
		offset += size
	} else if info.Flags.Has(HasLinkInfo) {
		// present but to be ignored
		if len(data) < offset+4 {
			return nil, ErrTruncated
		}
		offset += int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		if len(data) < offset {
			return nil, ErrTruncated
		}
	}

	unicode := info.Flags.Has(IsUnicode)
	for _, field := range []struct {
		flag  Flags
		value *string
	}{
		{HasName, &info.Name},
		{HasRelativePath, &info.RelativePath},
		{HasWorkingDir, &info.WorkingDir},
		{HasArguments, &info.Arguments},
		{HasIconLocation, &info.IconLocation},
	} {
		if !info.Flags.Has(field.flag) {
			continue
		}
		value, size, err := readStringData(data[offset:], unicode)
		if err != nil {
			return nil, err
		}
		*field.value = value
		offset += size
	}

	if err := parseExtraData(info, data[offset:]); err != nil {
		return nil, err
	}
	return info, nil
}

// StringData entries are counted in characters, not bytes, and are not
// NUL terminated, though some writers pad them with NULs anyway.
func readStringData(data []byte, unicode bool) (string, int, error) {
	if len(data) < 2 {
		return "", 0, ErrTruncated
	}
	count := int(binary.LittleEndian.Uint16(data[0:2]))
	size := count
	if unicode {
		size *= 2
	}
	if len(data) < 2+size {
		return "", 0, ErrTruncated
	}
	raw := data[2 : 2+size]

	var value string
	if unicode {
		value = internal.DecodeUnicode(raw)
	} else {
		value = internal.DecodeString(raw)
	}
	return strings.Trim(value, "\x00"), 2 + size, nil
}
