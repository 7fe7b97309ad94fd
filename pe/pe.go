// Package pe maps PE32 and PE32+ images and reads their resource directory.
package pe

import (
	"bytes"
	"debug/pe"
	"errors"
	"fmt"
)

const (
	// smallest image that holds a DOS header plus a PE signature and COFF header
	minimumSize = 96

	optionalHeader32Size = 224
	optionalHeader64Size = 240
)

// ErrNotPE is returned for data that is neither a PE32 nor a PE32+ image.
var ErrNotPE = errors.New("not a PE32 or PE32+ image")

type section struct {
	name           string
	virtualAddress uint32
	virtualSize    uint32
	offset         uint32
	size           uint32
}

// File is a mapped PE image. Resource data returned by its methods aliases
// the mapping and is only valid until Close.
type File struct {
	Bits    int
	Machine uint16

	data     []byte
	unmap    func() error
	sections []section

	resourceRVA  uint32
	resourceSize uint32
}

// Open maps the file at path and parses its headers.
func Open(path string) (*File, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(data)
	if err != nil {
		_ = unmap()
		return nil, err
	}
	f.unmap = unmap
	return f, nil
}

// NewFile parses the headers of an in-memory image.
func NewFile(data []byte) (*File, error) {
	if len(data) < minimumSize || data[0] != 'M' || data[1] != 'Z' {
		return nil, ErrNotPE
	}
	peFile, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPE, err)
	}

	f := &File{
		Machine: peFile.FileHeader.Machine,
		data:    data,
	}

	var directories []pe.DataDirectory
	switch header := peFile.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		if peFile.FileHeader.SizeOfOptionalHeader != optionalHeader64Size {
			return nil, ErrNotPE
		}
		f.Bits = 64
		directories = dataDirectories(header.DataDirectory[:], header.NumberOfRvaAndSizes)
	case *pe.OptionalHeader32:
		if peFile.FileHeader.SizeOfOptionalHeader != optionalHeader32Size {
			return nil, ErrNotPE
		}
		f.Bits = 32
		directories = dataDirectories(header.DataDirectory[:], header.NumberOfRvaAndSizes)
	default:
		return nil, ErrNotPE
	}

	if len(directories) > pe.IMAGE_DIRECTORY_ENTRY_RESOURCE {
		resource := directories[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE]
		f.resourceRVA = resource.VirtualAddress
		f.resourceSize = resource.Size
	}

	for _, s := range peFile.Sections {
		f.sections = append(f.sections, section{
			name:           s.Name,
			virtualAddress: s.VirtualAddress,
			virtualSize:    s.VirtualSize,
			offset:         s.Offset,
			size:           s.Size,
		})
	}
	return f, nil
}

// Close releases the mapping.
func (f *File) Close() error {
	if f.unmap == nil {
		return nil
	}
	unmap := f.unmap
	f.unmap = nil
	f.data = nil
	return unmap()
}

// rvaSlice returns the raw bytes backing an RVA up to the end of its section.
func (f *File) rvaSlice(rva uint32) ([]byte, bool) {
	for _, s := range f.sections {
		extent := s.virtualSize
		if s.size > extent {
			extent = s.size
		}
		if rva < s.virtualAddress || rva-s.virtualAddress >= extent {
			continue
		}
		delta := rva - s.virtualAddress
		if delta >= s.size {
			// inside the section's zero filled tail
			return nil, false
		}
		start := uint64(s.offset) + uint64(delta)
		end := uint64(s.offset) + uint64(s.size)
		if end > uint64(len(f.data)) {
			end = uint64(len(f.data))
		}
		if start >= end {
			return nil, false
		}
		return f.data[start:end], true
	}
	return nil, false
}

func (f *File) sectionData(s section) []byte {
	start := uint64(s.offset)
	end := start + uint64(s.size)
	if end > uint64(len(f.data)) {
		end = uint64(len(f.data))
	}
	if start >= end {
		return nil
	}
	return f.data[start:end]
}

func dataDirectories(directories []pe.DataDirectory, count uint32) []pe.DataDirectory {
	if int(count) < len(directories) {
		return directories[:count]
	}
	return directories
}
