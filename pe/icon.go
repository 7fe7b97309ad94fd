package pe

import (
	"encoding/binary"
	"errors"
	"log/slog"
)

const (
	groupHeaderSize = 6
	groupEntrySize  = 14
	iconEntrySize   = 16
)

// ErrNoIcon is returned when no icon group could be reassembled.
var ErrNoIcon = errors.New("no icon group resource")

// GroupEntry is a GRPICONDIRENTRY: an ICO directory entry that names its
// image by RT_ICON resource ID instead of by file offset.
type GroupEntry struct {
	Width      uint8  `json:"width"`
	Height     uint8  `json:"height"`
	ColorCount uint8  `json:"colorCount"`
	Planes     uint16 `json:"planes"`
	BitCount   uint16 `json:"bitCount"`
	Size       uint32 `json:"size"`
	IconID     uint16 `json:"iconID"`

	raw []byte
}

// IconGroup is a parsed RT_GROUP_ICON resource.
type IconGroup struct {
	ID       uint32       `json:"id"`
	Name     string       `json:"name,omitempty"`
	Language uint32       `json:"language"`
	Entries  []GroupEntry `json:"entries"`
}

func parseIconGroup(resource Resource) (*IconGroup, error) {
	data := resource.data
	if len(data) < groupHeaderSize ||
		binary.LittleEndian.Uint16(data[0:2]) != 0 ||
		binary.LittleEndian.Uint16(data[2:4]) != 1 {
		return nil, ErrInvalidResources
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if len(data) < groupHeaderSize+count*groupEntrySize {
		return nil, ErrInvalidResources
	}

	group := &IconGroup{
		ID:       resource.ID,
		Name:     resource.Name,
		Language: resource.Language,
		Entries:  make([]GroupEntry, count),
	}
	for i := range group.Entries {
		raw := data[groupHeaderSize+i*groupEntrySize : groupHeaderSize+(i+1)*groupEntrySize]
		group.Entries[i] = GroupEntry{
			Width:      raw[0],
			Height:     raw[1],
			ColorCount: raw[2],
			Planes:     binary.LittleEndian.Uint16(raw[4:6]),
			BitCount:   binary.LittleEndian.Uint16(raw[6:8]),
			Size:       binary.LittleEndian.Uint32(raw[8:12]),
			IconID:     binary.LittleEndian.Uint16(raw[12:14]),
			raw:        raw,
		}
	}
	return group, nil
}

// IconGroups returns the well formed RT_GROUP_ICON resources in directory
// order.
func (f *File) IconGroups() ([]IconGroup, error) {
	resources, err := f.Resources()
	if err != nil {
		return nil, err
	}
	return iconGroups(resources), nil
}

func iconGroups(resources []Resource) []IconGroup {
	groups := []IconGroup{}
	for _, resource := range resources {
		if resource.Type != rtGroupIcon {
			continue
		}
		group, err := parseIconGroup(resource)
		if err != nil {
			slog.Debug("seedicon: skipping malformed icon group", "id", resource.ID, "name", resource.Name)
			continue
		}
		groups = append(groups, *group)
	}
	return groups
}

// Icon reassembles the first icon group into an ICO container. Group entries
// whose RT_ICON is missing are dropped, and a group left with no images
// yields to the next one.
func (f *File) Icon() ([]byte, error) {
	resources, err := f.Resources()
	if err != nil {
		return nil, err
	}

	// the first language listed wins for each icon ID
	icons := map[uint32][]byte{}
	for _, resource := range resources {
		if resource.Type != rtIcon || resource.Name != "" {
			continue
		}
		if _, ok := icons[resource.ID]; !ok {
			icons[resource.ID] = resource.data
		}
	}

	for _, group := range iconGroups(resources) {
		if container := group.container(icons); container != nil {
			return container, nil
		}
		slog.Debug("seedicon: icon group references no icons", "id", group.ID, "name", group.Name)
	}
	return nil, ErrNoIcon
}

func (g *IconGroup) container(icons map[uint32][]byte) []byte {
	entries := []GroupEntry{}
	payloads := [][]byte{}
	for _, entry := range g.Entries {
		payload, ok := icons[uint32(entry.IconID)]
		if !ok {
			continue
		}
		entries = append(entries, entry)
		payloads = append(payloads, payload)
	}
	if len(entries) == 0 {
		return nil
	}

	size := groupHeaderSize + len(entries)*iconEntrySize
	for _, payload := range payloads {
		size += len(payload)
	}
	container := make([]byte, groupHeaderSize, size)
	binary.LittleEndian.PutUint16(container[2:4], 1)
	binary.LittleEndian.PutUint16(container[4:6], uint16(len(entries)))

	offset := groupHeaderSize + len(entries)*iconEntrySize
	for i, entry := range entries {
		var raw [iconEntrySize]byte
		copy(raw[:8], entry.raw[:8])
		// sizes come from the RT_ICON resource, not the group
		binary.LittleEndian.PutUint32(raw[8:12], uint32(len(payloads[i])))
		binary.LittleEndian.PutUint32(raw[12:16], uint32(offset))
		container = append(container, raw[:]...)
		offset += len(payloads[i])
	}
	for _, payload := range payloads {
		container = append(container, payload...)
	}
	return container
}
