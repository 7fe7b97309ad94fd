package fixture

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"sort"
)

const (
	rtIcon      = 3
	rtGroupIcon = 14

	fileAlignment    = 0x200
	sectionAlignment = 0x1000
	resourceRVA      = 0x1000
	resourceOffset   = 0x200
)

// Resource is a leaf of a built resource directory.
type Resource struct {
	Type     uint32
	ID       uint32
	Language uint32
	Data     []byte
}

// IconResources splits an ICO container into RT_ICON resources numbered from
// firstIconID and the RT_GROUP_ICON resource groupID that references them.
func IconResources(groupID, firstIconID uint16, ico []byte) []Resource {
	count := int(binary.LittleEndian.Uint16(ico[4:6]))

	var group bytes.Buffer
	_ = binary.Write(&group, binary.LittleEndian, []uint16{0, 1, uint16(count)})

	resources := []Resource{}
	for i := 0; i < count; i++ {
		entry := ico[6+16*i : 6+16*(i+1)]
		size := binary.LittleEndian.Uint32(entry[8:12])
		offset := binary.LittleEndian.Uint32(entry[12:16])
		id := firstIconID + uint16(i)

		// GRPICONDIRENTRY is the ICO entry with the offset replaced by a u16 ID
		group.Write(entry[:12])
		_ = binary.Write(&group, binary.LittleEndian, id)

		resources = append(resources, Resource{
			Type:     rtIcon,
			ID:       uint32(id),
			Language: 1033,
			Data:     ico[offset : offset+size],
		})
	}
	return append(resources, Resource{
		Type:     rtGroupIcon,
		ID:       uint32(groupID),
		Language: 1033,
		Data:     group.Bytes(),
	})
}

// PE builds a minimal PE32 (bits 32) or PE32+ (bits 64) image with a single
// .rsrc section holding the given resources.
func PE(bits int, resources []Resource) []byte {
	section := ResourceSection(resources)
	rawSize := align(len(section), fileAlignment)

	var buf bytes.Buffer
	dos := make([]byte, 0x40)
	copy(dos, "MZ")
	binary.LittleEndian.PutUint32(dos[0x3c:], 0x40)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	header := pe.FileHeader{
		NumberOfSections: 1,
		TimeDateStamp:    0x5f000000,
	}
	directories := [16]pe.DataDirectory{}
	directories[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE] = pe.DataDirectory{
		VirtualAddress: resourceRVA,
		Size:           uint32(len(section)),
	}
	imageSize := uint32(resourceRVA + align(len(section), sectionAlignment))

	if bits == 64 {
		header.Machine = pe.IMAGE_FILE_MACHINE_AMD64
		header.SizeOfOptionalHeader = 240
		header.Characteristics = pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_LARGE_ADDRESS_AWARE
		_ = binary.Write(&buf, binary.LittleEndian, header)
		_ = binary.Write(&buf, binary.LittleEndian, pe.OptionalHeader64{
			Magic:                 0x20b,
			ImageBase:             0x140000000,
			SectionAlignment:      sectionAlignment,
			FileAlignment:         fileAlignment,
			MajorSubsystemVersion: 6,
			SizeOfImage:           imageSize,
			SizeOfHeaders:         resourceOffset,
			Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
			NumberOfRvaAndSizes:   16,
			DataDirectory:         directories,
		})
	} else {
		header.Machine = pe.IMAGE_FILE_MACHINE_I386
		header.SizeOfOptionalHeader = 224
		header.Characteristics = pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_32BIT_MACHINE
		_ = binary.Write(&buf, binary.LittleEndian, header)
		_ = binary.Write(&buf, binary.LittleEndian, pe.OptionalHeader32{
			Magic:                 0x10b,
			ImageBase:             0x400000,
			SectionAlignment:      sectionAlignment,
			FileAlignment:         fileAlignment,
			MajorSubsystemVersion: 6,
			SizeOfImage:           imageSize,
			SizeOfHeaders:         resourceOffset,
			Subsystem:             pe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
			NumberOfRvaAndSizes:   16,
			DataDirectory:         directories,
		})
	}

	name := [8]uint8{}
	copy(name[:], ".rsrc")
	_ = binary.Write(&buf, binary.LittleEndian, pe.SectionHeader32{
		Name:             name,
		VirtualSize:      uint32(len(section)),
		VirtualAddress:   resourceRVA,
		SizeOfRawData:    uint32(rawSize),
		PointerToRawData: resourceOffset,
		Characteristics:  pe.IMAGE_SCN_CNT_INITIALIZED_DATA | pe.IMAGE_SCN_MEM_READ,
	})

	image := make([]byte, resourceOffset+rawSize)
	copy(image, buf.Bytes())
	copy(image[resourceOffset:], section)
	return image
}

type resourceNode struct {
	id       uint32
	children []*resourceNode
	leaf     *Resource
	offset   int
}

func (n *resourceNode) child(id uint32) *resourceNode {
	for _, c := range n.children {
		if c.id == id {
			return c
		}
	}
	c := &resourceNode{id: id}
	n.children = append(n.children, c)
	return c
}

// ResourceSection lays out a type, name, language directory tree followed by
// the data entries and the data itself. IDs are sorted the way linkers emit
// them.
func ResourceSection(resources []Resource) []byte {
	sorted := append([]Resource{}, resources...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].ID < sorted[j].ID
	})

	root := &resourceNode{}
	for i := range sorted {
		lang := root.child(sorted[i].Type).child(sorted[i].ID).child(sorted[i].Language)
		lang.leaf = &sorted[i]
	}

	directories := []*resourceNode{root}
	leaves := []*resourceNode{}
	cursor := 0
	for i := 0; i < len(directories); i++ {
		dir := directories[i]
		dir.offset = cursor
		cursor += 16 + 8*len(dir.children)
		for _, c := range dir.children {
			if c.leaf != nil {
				leaves = append(leaves, c)
			} else {
				directories = append(directories, c)
			}
		}
	}
	for _, leaf := range leaves {
		leaf.offset = cursor
		cursor += 16
	}
	dataOffsets := make([]int, len(leaves))
	for i, leaf := range leaves {
		dataOffsets[i] = cursor
		cursor = align(cursor+len(leaf.leaf.Data), 4)
	}

	section := make([]byte, cursor)
	for _, dir := range directories {
		binary.LittleEndian.PutUint16(section[dir.offset+14:], uint16(len(dir.children)))
		for i, c := range dir.children {
			entry := section[dir.offset+16+8*i:]
			binary.LittleEndian.PutUint32(entry[0:4], c.id)
			target := uint32(c.offset)
			if c.leaf == nil {
				target |= 0x80000000
			}
			binary.LittleEndian.PutUint32(entry[4:8], target)
		}
	}
	for i, leaf := range leaves {
		entry := section[leaf.offset:]
		binary.LittleEndian.PutUint32(entry[0:4], uint32(resourceRVA+dataOffsets[i]))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(leaf.leaf.Data)))
		copy(section[dataOffsets[i]:], leaf.leaf.Data)
	}
	return section
}

func align(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}
