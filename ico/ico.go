// Package ico reads Windows icon containers and writes the best icon out as
// a PNG.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
	goico "github.com/sergeymakinen/go-ico"
)

const (
	directorySize = 6
	entrySize     = 16

	typeIcon   = 1
	typeCursor = 2
)

var (
	// ErrInvalidHeader is returned for data that is not an icon container.
	ErrInvalidHeader = errors.New("invalid icon container header")
	// ErrNoIcons is returned for a container without any images.
	ErrNoIcons = errors.New("icon container has no images")
	// ErrTruncated is returned when the directory runs past the data.
	ErrTruncated = errors.New("truncated icon container")
)

// DecodeError wraps a failure to decode the selected image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding icon image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError wraps a failure to write the PNG to its destination.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing icon to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Entry is one image of an icon container.
type Entry struct {
	// Width and Height are the declared sizes with 0 already mapped to 256.
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ColorCount uint8  `json:"colorCount"`
	Planes     uint16 `json:"planes"`
	BitCount   uint16 `json:"bitCount"`
	Size       uint32 `json:"size"`
	Offset     uint32 `json:"offset"`

	raw  [entrySize]byte
	data []byte
}

// Directory is a parsed icon container.
type Directory struct {
	Type    uint16   `json:"type"`
	Entries []*Entry `json:"entries"`
}

func dimension(value byte) int {
	if value == 0 {
		return 256
	}
	return int(value)
}

// Parse reads the container directory. Payload bounds are only checked once
// an entry is decoded, so a container with one broken image still parses.
func Parse(data []byte) (*Directory, error) {
	if len(data) < directorySize {
		return nil, ErrInvalidHeader
	}
	reserved := binary.LittleEndian.Uint16(data[0:2])
	kind := binary.LittleEndian.Uint16(data[2:4])
	if reserved != 0 || (kind != typeIcon && kind != typeCursor) {
		return nil, ErrInvalidHeader
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return nil, ErrNoIcons
	}
	if len(data) < directorySize+count*entrySize {
		return nil, ErrTruncated
	}

	directory := &Directory{Type: kind, Entries: make([]*Entry, count)}
	for i := range directory.Entries {
		raw := data[directorySize+i*entrySize : directorySize+(i+1)*entrySize]
		entry := &Entry{
			Width:      dimension(raw[0]),
			Height:     dimension(raw[1]),
			ColorCount: raw[2],
			Planes:     binary.LittleEndian.Uint16(raw[4:6]),
			BitCount:   binary.LittleEndian.Uint16(raw[6:8]),
			Size:       binary.LittleEndian.Uint32(raw[8:12]),
			Offset:     binary.LittleEndian.Uint32(raw[12:16]),
		}
		copy(entry.raw[:], raw)
		if uint64(entry.Offset)+uint64(entry.Size) <= uint64(len(data)) {
			entry.data = data[entry.Offset : entry.Offset+entry.Size]
		}
		directory.Entries[i] = entry
	}
	return directory, nil
}

// Best returns the entry with the largest declared width. Ties keep the
// earliest entry.
func (d *Directory) Best() (*Entry, error) {
	if len(d.Entries) == 0 {
		return nil, ErrNoIcons
	}
	best := d.Entries[0]
	for _, entry := range d.Entries[1:] {
		if entry.Width > best.Width {
			best = entry
		}
	}
	return best, nil
}

// Decode decodes the PNG or DIB payload of the entry.
func (e *Entry) Decode() (image.Image, error) {
	if e.data == nil {
		return nil, &DecodeError{Err: ErrTruncated}
	}

	// rewrap as a single image container so go-ico decodes exactly this entry
	container := make([]byte, directorySize+entrySize+len(e.data))
	binary.LittleEndian.PutUint16(container[2:4], typeIcon)
	binary.LittleEndian.PutUint16(container[4:6], 1)
	copy(container[directorySize:], e.raw[:])
	binary.LittleEndian.PutUint32(container[directorySize+12:], directorySize+entrySize)
	copy(container[directorySize+entrySize:], e.data)

	img, err := goico.Decode(bytes.NewReader(container))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// WritePNG encodes img as a PNG at dest, replacing any existing file.
func WritePNG(dest string, img image.Image) error {
	if err := gg.SavePNG(dest, img); err != nil {
		return &WriteError{Path: dest, Err: err}
	}
	return nil
}

// Extract writes the best image of the container in data to dest.
func Extract(dest string, data []byte) error {
	directory, err := Parse(data)
	if err != nil {
		return err
	}
	entry, err := directory.Best()
	if err != nil {
		return err
	}
	img, err := entry.Decode()
	if err != nil {
		return err
	}
	return WritePNG(dest, img)
}

// ExtractFile is Extract for a container on disk. Read failures are returned
// unwrapped so callers can tell them apart from format errors.
func ExtractFile(dest, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Extract(dest, data)
}
