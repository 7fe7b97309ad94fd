// Package fixture builds ICO, PE and Shell Link byte images for tests.
package fixture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	goico "github.com/sergeymakinen/go-ico"
)

// IconImage is one entry of a built ICO container. Width and Height are the
// declared directory bytes, 0 meaning 256.
type IconImage struct {
	Width    byte
	Height   byte
	BitCount uint16
	Payload  []byte
}

// PNG encodes a solid square image of the given size.
func PNG(size int, c color.Color) []byte {
	dc := gg.NewContext(size, size)
	dc.SetColor(c)
	dc.Clear()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BMP returns a DIB icon payload, with its AND mask, for a solid square image.
func BMP(size int, c color.Color) []byte {
	dc := gg.NewContext(size, size)
	dc.SetColor(c)
	dc.Clear()

	var buf bytes.Buffer
	if err := goico.Encode(&buf, dc.Image()); err != nil {
		panic(err)
	}
	// single entry container, the payload follows the directory
	return buf.Bytes()[6+16:]
}

// Square is a PNG backed IconImage whose declared size matches its pixels.
func Square(size int) IconImage {
	return IconImage{
		Width:    byte(size),
		Height:   byte(size),
		BitCount: 32,
		Payload:  PNG(size, color.RGBA{R: uint8(size), G: 0x80, B: 0x40, A: 0xff}),
	}
}

// ICO lays the images out as an icon container in the given order.
func ICO(images ...IconImage) []byte {
	var buf bytes.Buffer
	header := []uint16{0, 1, uint16(len(images))}
	_ = binary.Write(&buf, binary.LittleEndian, header)

	offset := 6 + 16*len(images)
	for _, img := range images {
		buf.Write([]byte{img.Width, img.Height, 0, 0})
		_ = binary.Write(&buf, binary.LittleEndian, []uint16{1, img.BitCount})
		_ = binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(img.Payload)), uint32(offset)})
		offset += len(img.Payload)
	}
	for _, img := range images {
		buf.Write(img.Payload)
	}
	return buf.Bytes()
}

// Size returns the pixel size of a decoded image.
func Size(img image.Image) (int, int) {
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
