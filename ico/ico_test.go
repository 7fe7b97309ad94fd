package ico

import (
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/seedicon/internal/fixture"
)

func TestBestSelectsWidest(t *testing.T) {
	data := fixture.ICO(fixture.Square(16), fixture.Square(32), fixture.Square(48), fixture.Square(256))

	directory, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, directory.Entries, 4)
	require.Equal(t, 256, directory.Entries[3].Width)

	best, err := directory.Best()
	require.NoError(t, err)
	require.Same(t, directory.Entries[3], best)

	img, err := best.Decode()
	require.NoError(t, err)
	width, height := fixture.Size(img)
	require.Equal(t, 256, width)
	require.Equal(t, 256, height)
}

func TestBestTieKeepsFirst(t *testing.T) {
	first := fixture.Square(32)
	second := fixture.Square(32)
	second.Payload = fixture.PNG(32, color.White)

	directory, err := Parse(fixture.ICO(fixture.Square(16), first, second))
	require.NoError(t, err)

	best, err := directory.Best()
	require.NoError(t, err)
	require.Same(t, directory.Entries[1], best)
}

func TestBestUsesDeclaredWidth(t *testing.T) {
	// the declared width wins even when the payload disagrees
	liar := fixture.Square(16)
	liar.Width = 64

	directory, err := Parse(fixture.ICO(fixture.Square(48), liar))
	require.NoError(t, err)

	best, err := directory.Best()
	require.NoError(t, err)
	require.Equal(t, 64, best.Width)

	img, err := best.Decode()
	require.NoError(t, err)
	width, _ := fixture.Size(img)
	require.Equal(t, 16, width)
}

func TestDecodeBitmapPayload(t *testing.T) {
	directory, err := Parse(fixture.ICO(fixture.IconImage{
		Width:    24,
		Height:   24,
		BitCount: 32,
		Payload:  fixture.BMP(24, color.RGBA{R: 0xff, A: 0xff}),
	}))
	require.NoError(t, err)

	img, err := directory.Entries[0].Decode()
	require.NoError(t, err)
	width, height := fixture.Size(img)
	require.Equal(t, 24, width)
	require.Equal(t, 24, height)
}

func TestParseErrors(t *testing.T) {
	empty := fixture.ICO()
	_, err := Parse(empty)
	require.ErrorIs(t, err, ErrNoIcons)

	_, err = Parse([]byte{0, 0, 1})
	require.ErrorIs(t, err, ErrInvalidHeader)

	png := fixture.PNG(16, color.Black)
	_, err = Parse(png)
	require.ErrorIs(t, err, ErrInvalidHeader)

	truncated := fixture.ICO(fixture.Square(16), fixture.Square(32))[:6+16]
	_, err = Parse(truncated)
	require.ErrorIs(t, err, ErrTruncated)

	_, err = (&Directory{}).Best()
	require.ErrorIs(t, err, ErrNoIcons)
}

func TestDecodeErrors(t *testing.T) {
	garbage := fixture.IconImage{Width: 32, Height: 32, BitCount: 32, Payload: []byte("not an image")}
	directory, err := Parse(fixture.ICO(garbage))
	require.NoError(t, err)

	_, err = directory.Entries[0].Decode()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	// payload past the end of the data
	data := fixture.ICO(fixture.Square(16))
	binary.LittleEndian.PutUint32(data[6+8:], uint32(len(data)))
	directory, err = Parse(data)
	require.NoError(t, err)

	_, err = directory.Entries[0].Decode()
	require.ErrorAs(t, err, &decodeErr)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "seed_app.png")

	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))
	require.NoError(t, Extract(dest, fixture.ICO(fixture.Square(16), fixture.Square(48))))

	img, err := gg.LoadPNG(dest)
	require.NoError(t, err)
	width, _ := fixture.Size(img)
	require.Equal(t, 48, width)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "app.ico")
	dest := filepath.Join(dir, "app.png")
	require.NoError(t, os.WriteFile(source, fixture.ICO(fixture.Square(32)), 0o644))

	require.NoError(t, ExtractFile(dest, source))
	require.FileExists(t, dest)

	err := ExtractFile(dest, filepath.Join(dir, "missing.ico"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWritePNGError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "app.png")
	err := Extract(dest, fixture.ICO(fixture.Square(16)))

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, dest, writeErr.Path)
}
