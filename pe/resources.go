package pe

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"strconv"

	"github.com/andrewstucki/seedicon/internal"
)

const (
	rtCursor       uint32 = 1
	rtBitmap       uint32 = 2
	rtIcon         uint32 = 3
	rtMenu         uint32 = 4
	rtDialog       uint32 = 5
	rtString       uint32 = 6
	rtFontdir      uint32 = 7
	rtFont         uint32 = 8
	rtAccelerator  uint32 = 9
	rtRcdata       uint32 = 10
	rtMessagetable uint32 = 11
	rtGroupCursor  uint32 = 12
	rtGroupIcon    uint32 = 14
	rtVersion      uint32 = 16
	rtDlginclude   uint32 = 17
	rtPlugplay     uint32 = 19
	rtVxd          uint32 = 20
	rtAnicursor    uint32 = 21
	rtAniicon      uint32 = 22
	rtHTML         uint32 = 23
	rtManifest     uint32 = 24
)

var nameMap = map[uint32]string{
	rtCursor:       "RT_CURSOR",
	rtBitmap:       "RT_BITMAP",
	rtIcon:         "RT_ICON",
	rtMenu:         "RT_MENU",
	rtDialog:       "RT_DIALOG",
	rtString:       "RT_STRING",
	rtFontdir:      "RT_FONTDIR",
	rtFont:         "RT_FONT",
	rtAccelerator:  "RT_ACCELERATOR",
	rtRcdata:       "RT_RCDATA",
	rtMessagetable: "RT_MESSAGETABLE",
	rtGroupCursor:  "RT_GROUP_CURSOR",
	rtGroupIcon:    "RT_GROUP_ICON",
	rtVersion:      "RT_VERSION",
	rtDlginclude:   "RT_DLGINCLUDE",
	rtPlugplay:     "RT_PLUGPLAY",
	rtVxd:          "RT_VXD",
	rtAnicursor:    "RT_ANICURSOR",
	rtAniicon:      "RT_ANIICON",
	rtHTML:         "RT_HTML",
	rtManifest:     "RT_MANIFEST",
}

// ErrInvalidResources is returned when the resource directory tree points
// outside of its section or nests deeper than type, name and language.
var ErrInvalidResources = errors.New("invalid resource directory")

const (
	levelType = iota
	levelName
	levelLanguage
)

// Resource is a leaf of the resource directory tree.
type Resource struct {
	// Type and ID are zero when the entry is named instead, see TypeName
	// and Name.
	Type     uint32 `json:"type"`
	TypeName string `json:"typeName"`
	ID       uint32 `json:"id"`
	Name     string `json:"name,omitempty"`
	Language uint32 `json:"language"`

	data []byte
}

// Data returns the resource bytes.
func (r Resource) Data() []byte {
	return r.data
}

func idName(id uint32) string {
	if found, ok := nameMap[id]; ok {
		return found
	}
	return strconv.Itoa(int(id))
}

func hasHighBit(value uint32) bool {
	return (value & 0x80000000) > 0
}

func lowBits(value uint32) int {
	return int(value & 0x7fffffff)
}

// this strips the high bit that marks a subdirectory or name, then does a
// bounds check on the slice that is returned
func followOffset(global []byte, value uint32, requiredSize int) ([]byte, error) {
	offset := lowBits(value)
	if len(global) < offset+requiredSize {
		return nil, ErrInvalidResources
	}
	return global[offset:], nil
}

// Resources walks the resource directory in directory order. A leaf whose
// data lies outside the image is skipped rather than failing the walk.
func (f *File) Resources() ([]Resource, error) {
	if f.resourceRVA == 0 || f.resourceSize == 0 {
		return nil, nil
	}
	global, ok := f.rvaSlice(f.resourceRVA)
	if !ok {
		return nil, ErrInvalidResources
	}
	return f.parseEntries(global, global, levelType, Resource{})
}

func parseName(global, base []byte) (uint32, string, error) {
	id := binary.LittleEndian.Uint32(base[0:4])
	if !hasHighBit(id) {
		return id, "", nil
	}
	nameData, err := followOffset(global, id, 2)
	if err != nil {
		return 0, "", err
	}
	nameEnd := int(binary.LittleEndian.Uint16(nameData[0:2]))*2 + 2
	if len(nameData) < nameEnd {
		return 0, "", ErrInvalidResources
	}
	return 0, internal.DecodeUnicode(nameData[2:nameEnd]), nil
}

func (f *File) parseEntry(global, base []byte, level int, resource Resource) ([]Resource, error) {
	offset := binary.LittleEndian.Uint32(base[4:8])
	if hasHighBit(offset) {
		// we have a nested directory
		if level >= levelLanguage {
			return nil, ErrInvalidResources
		}
		next, err := followOffset(global, offset, 16)
		if err != nil {
			return nil, err
		}
		return f.parseEntries(global, next, level+1, resource)
	}

	// we have a leaf resource
	entry, err := followOffset(global, offset, 8)
	if err != nil {
		return nil, err
	}
	dataRVA := binary.LittleEndian.Uint32(entry[0:4])
	dataSize := int(binary.LittleEndian.Uint32(entry[4:8]))
	data, ok := f.rvaSlice(dataRVA)
	if !ok || len(data) < dataSize {
		slog.Debug("seedicon: skipping resource outside of image",
			"type", resource.TypeName, "id", resource.ID, "rva", dataRVA, "size", dataSize)
		return nil, nil
	}
	resource.data = data[:dataSize]
	return []Resource{resource}, nil
}

// A leaf's Type, Name, and Language IDs are determined by the path
// that is taken through directory tables to reach the leaf. The first
// table determines Type ID, the second table (pointed to by the directory
// entry in the first table) determines Name ID, and the third table
// determines Language ID.
func (f *File) parseEntries(global, base []byte, level int, parent Resource) ([]Resource, error) {
	if len(base) < 16 {
		return nil, ErrInvalidResources
	}
	resources := []Resource{}
	namedEntries := int(binary.LittleEndian.Uint16(base[12:14]))
	idEntries := int(binary.LittleEndian.Uint16(base[14:16]))
	numEntries := namedEntries + idEntries
	entriesData := base[16:]
	if len(entriesData) < numEntries*8 {
		return nil, ErrInvalidResources
	}

	for i := 0; i < numEntries; i++ {
		entryData := entriesData[8*i:]
		id, name, err := parseName(global, entryData)
		if err != nil {
			return nil, err
		}

		resource := parent
		switch level {
		case levelType:
			resource.Type = id
			resource.TypeName = name
			if name == "" {
				resource.TypeName = idName(id)
			}
		case levelName:
			resource.ID = id
			resource.Name = name
		case levelLanguage:
			resource.Language = id
		}

		entryResources, err := f.parseEntry(global, entryData, level, resource)
		if err != nil {
			return nil, err
		}
		resources = append(resources, entryResources...)
	}
	return resources, nil
}
