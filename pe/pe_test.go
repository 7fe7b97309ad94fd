package pe

import (
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/seedicon/ico"
	"github.com/andrewstucki/seedicon/internal/fixture"
)

func writeImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.exe")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenBitness(t *testing.T) {
	for _, bits := range []int{32, 64} {
		t.Run(map[int]string{32: "pe32", 64: "pe32+"}[bits], func(t *testing.T) {
			f, err := Open(writeImage(t, fixture.PE(bits, nil)))
			require.NoError(t, err)
			defer f.Close()

			require.Equal(t, bits, f.Bits)
			resources, err := f.Resources()
			require.NoError(t, err)
			require.Empty(t, resources)

			_, err = f.Icon()
			require.ErrorIs(t, err, ErrNoIcon)
		})
	}
}

func TestOpenRejectsNonPE(t *testing.T) {
	badSignature := fixture.PE(32, nil)
	copy(badSignature[0x40:], "NE\x00\x00")

	oddOptionalHeader := fixture.PE(32, nil)
	// SizeOfOptionalHeader lives at COFF header offset 16
	binary.LittleEndian.PutUint16(oddOptionalHeader[0x44+16:], 232)

	tests := map[string][]byte{
		"empty":               {},
		"too short":           []byte("MZ"),
		"elf":                 append([]byte("\x7fELF"), make([]byte, 200)...),
		"bad signature":       badSignature,
		"odd optional header": oddOptionalHeader,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Open(writeImage(t, data))
			require.ErrorIs(t, err, ErrNotPE)
		})
	}

	_, err := Open(filepath.Join(t.TempDir(), "missing.exe"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestResourcesDirectoryOrder(t *testing.T) {
	f, err := NewFile(fixture.PE(64, []fixture.Resource{
		{Type: uint32(rtManifest), ID: 1, Language: 1033, Data: []byte("<assembly/>")},
		{Type: uint32(rtVersion), ID: 1, Language: 1033, Data: []byte("version")},
		{Type: uint32(rtIcon), ID: 2, Language: 1033, Data: []byte("icon two")},
		{Type: uint32(rtIcon), ID: 1, Language: 1031, Data: []byte("icon one de")},
		{Type: uint32(rtIcon), ID: 1, Language: 1033, Data: []byte("icon one en")},
	}))
	require.NoError(t, err)

	resources, err := f.Resources()
	require.NoError(t, err)
	require.Len(t, resources, 5)

	type leaf struct {
		typeName string
		id       uint32
		language uint32
		data     string
	}
	actual := []leaf{}
	for _, r := range resources {
		actual = append(actual, leaf{r.TypeName, r.ID, r.Language, string(r.Data())})
	}
	require.Equal(t, []leaf{
		{"RT_ICON", 1, 1031, "icon one de"},
		{"RT_ICON", 1, 1033, "icon one en"},
		{"RT_ICON", 2, 1033, "icon two"},
		{"RT_VERSION", 1, 1033, "version"},
		{"RT_MANIFEST", 1, 1033, "<assembly/>"},
	}, actual)
}

func TestIcon(t *testing.T) {
	container := fixture.ICO(fixture.Square(16), fixture.Square(256), fixture.Square(48))
	for _, bits := range []int{32, 64} {
		f, err := NewFile(fixture.PE(bits, fixture.IconResources(1, 1, container)))
		require.NoError(t, err)

		groups, err := f.IconGroups()
		require.NoError(t, err)
		require.Len(t, groups, 1)
		require.Len(t, groups[0].Entries, 3)
		require.Equal(t, uint16(2), groups[0].Entries[1].IconID)

		data, err := f.Icon()
		require.NoError(t, err)

		directory, err := ico.Parse(data)
		require.NoError(t, err)
		best, err := directory.Best()
		require.NoError(t, err)
		require.Equal(t, 256, best.Width)

		img, err := best.Decode()
		require.NoError(t, err)
		width, _ := fixture.Size(img)
		require.Equal(t, 256, width)
	}
}

func TestIconFirstGroupWins(t *testing.T) {
	first := fixture.IconResources(1, 1, fixture.ICO(fixture.Square(32)))
	second := fixture.IconResources(2, 10, fixture.ICO(fixture.Square(64)))

	f, err := NewFile(fixture.PE(32, append(second, first...)))
	require.NoError(t, err)

	data, err := f.Icon()
	require.NoError(t, err)
	directory, err := ico.Parse(data)
	require.NoError(t, err)
	require.Len(t, directory.Entries, 1)
	require.Equal(t, 32, directory.Entries[0].Width)
}

func TestIconSkipsGroupsWithoutImages(t *testing.T) {
	broken := fixture.IconResources(1, 1, fixture.ICO(fixture.Square(32)))
	// drop the RT_ICON, keep its group
	broken = broken[1:]
	working := fixture.IconResources(2, 10, fixture.ICO(fixture.Square(48)))

	f, err := NewFile(fixture.PE(64, append(broken, working...)))
	require.NoError(t, err)

	data, err := f.Icon()
	require.NoError(t, err)
	directory, err := ico.Parse(data)
	require.NoError(t, err)
	require.Equal(t, 48, directory.Entries[0].Width)
}

func TestIconMissingImagesOnly(t *testing.T) {
	group := fixture.IconResources(1, 1, fixture.ICO(fixture.Square(32), fixture.Square(16)))
	// keep the 16px image and the group
	f, err := NewFile(fixture.PE(32, group[1:]))
	require.NoError(t, err)

	data, err := f.Icon()
	require.NoError(t, err)
	directory, err := ico.Parse(data)
	require.NoError(t, err)
	require.Len(t, directory.Entries, 1)
	require.Equal(t, 16, directory.Entries[0].Width)
}

func TestResourcesOutOfBounds(t *testing.T) {
	data := fixture.PE(32, []fixture.Resource{
		{Type: uint32(rtRcdata), ID: 1, Language: 0, Data: []byte("payload")},
	})
	// point the root directory's first entry far outside of the section
	root := 0x200 + 16
	binary.LittleEndian.PutUint32(data[root+4:], 0x80000000|0x7fff0)

	f, err := NewFile(data)
	require.NoError(t, err)
	_, err = f.Resources()
	require.ErrorIs(t, err, ErrInvalidResources)
}

func TestSummary(t *testing.T) {
	resources := fixture.IconResources(7, 1, fixture.ICO(fixture.Square(16), fixture.Square(32)))
	resources = append(resources, fixture.Resource{
		Type: uint32(rtRcdata), ID: 3, Language: 0, Data: fixture.PNG(8, color.Black),
	})
	f, err := NewFile(fixture.PE(64, resources))
	require.NoError(t, err)

	summary, err := f.Summary()
	require.NoError(t, err)
	require.Equal(t, 64, summary.Bits)
	require.Equal(t, "x64", summary.TargetMachine)
	require.Len(t, summary.Sections, 1)
	require.Equal(t, ".rsrc", summary.Sections[0].Name)
	require.Len(t, summary.Sections[0].SHA256, 64)
	require.Equal(t, map[string]int{"RT_ICON": 2, "RT_RCDATA": 1, "RT_GROUP_ICON": 1}, summary.ContainedResourcesByType)
	require.Equal(t, map[string]int{"1033": 3, "neutral": 1}, summary.ContainedResourcesByLanguage)
	require.Len(t, summary.IconGroups, 1)
	require.Equal(t, uint32(7), summary.IconGroups[0].ID)

	mimes := map[string]string{}
	for _, resource := range summary.Resources {
		mimes[resource.Type] = resource.MIME
	}
	require.Equal(t, "image/png", mimes["RT_RCDATA"])
	require.Equal(t, "image/png", mimes["RT_ICON"])
}

func TestEntropy(t *testing.T) {
	require.Equal(t, 0.0, entropy(nil))
	require.Equal(t, 0.0, entropy([]byte{1, 1, 1, 1}))
	require.Equal(t, 1.0, entropy([]byte{0, 1, 0, 1}))
	require.Equal(t, 8.0, entropy(func() []byte {
		data := make([]byte, 256)
		for i := range data {
			data[i] = byte(i)
		}
		return data
	}()))
}
