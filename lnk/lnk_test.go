package lnk

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/seedicon/internal/fixture"
)

func TestParseStringData(t *testing.T) {
	for _, unicode := range []bool{false, true} {
		name := "code page"
		if unicode {
			name = "unicode"
		}
		t.Run(name, func(t *testing.T) {
			data := fixture.LNK(fixture.Link{
				Unicode:      unicode,
				IDList:       []byte{0x14, 0x00, 0x1f, 0x50},
				Name:         "Seed Launcher",
				RelativePath: `..\..\Seed\Seed.exe`,
				WorkingDir:   `C:\Program Files\Seed`,
				Arguments:    "--café",
				IconLocation: `C:\Program Files\Seed\seed.ico`,
				IconIndex:    2,
			})

			info, err := Parse(data)
			require.NoError(t, err)

			expected := &Info{
				Flags:          info.Flags,
				FileAttributes: 0x20,
				IconIndex:      2,
				ShowCommand:    1,
				Name:           "Seed Launcher",
				RelativePath:   `..\..\Seed\Seed.exe`,
				WorkingDir:     `C:\Program Files\Seed`,
				Arguments:      "--café",
				IconLocation:   `C:\Program Files\Seed\seed.ico`,
			}
			if diff := cmp.Diff(expected, info); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, unicode, info.Flags.Has(IsUnicode))
			require.True(t, info.Flags.Has(HasLinkTargetIDList|HasIconLocation))
			require.False(t, info.Flags.Has(HasLinkInfo))
			require.Empty(t, info.Target())
		})
	}
}

func TestParseLinkInfo(t *testing.T) {
	tests := []struct {
		name     string
		link     fixture.Link
		expected *LinkInfo
		target   string
	}{
		{
			name: "local base path",
			link: fixture.Link{
				LocalBasePath: `C:\Program Files\Seed\Seed.exe`,
			},
			expected: &LinkInfo{
				LocalBasePath:     `C:\Program Files\Seed\Seed.exe`,
				HasVolumeID:       true,
				DriveType:         3,
				DriveSerialNumber: 0x1234abcd,
			},
			target: `C:\Program Files\Seed\Seed.exe`,
		},
		{
			name: "local base path with suffix",
			link: fixture.Link{
				Unicode:          true,
				LocalBasePath:    `C:\Games\`,
				CommonPathSuffix: `Séed\Seed.exe`,
			},
			expected: &LinkInfo{
				LocalBasePath:     `C:\Games\`,
				CommonPathSuffix:  `Séed\Seed.exe`,
				HasVolumeID:       true,
				DriveType:         3,
				DriveSerialNumber: 0x1234abcd,
			},
			target: `C:\Games\Séed\Seed.exe`,
		},
		{
			name: "network share",
			link: fixture.Link{
				NetName:          `\\server\share`,
				CommonPathSuffix: `tools\app.exe`,
			},
			expected: &LinkInfo{
				NetName:          `\\server\share`,
				CommonPathSuffix: `tools\app.exe`,
				HasNetworkLink:   true,
			},
			target: `\\server\share\tools\app.exe`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info, err := Parse(fixture.LNK(test.link))
			require.NoError(t, err)
			require.NotNil(t, info.LinkInfo)
			if diff := cmp.Diff(test.expected, info.LinkInfo, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("LinkInfo mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, test.target, info.Target())
		})
	}
}

func TestParseEnvironmentTarget(t *testing.T) {
	info, err := Parse(fixture.LNK(fixture.Link{
		Name:              "Installer",
		EnvironmentTarget: `%ProgramFiles%\Seed\Seed.exe`,
	}))
	require.NoError(t, err)
	require.NotNil(t, info.Environment)
	require.Equal(t, `%ProgramFiles%\Seed\Seed.exe`, info.Environment.ANSI)
	require.Equal(t, `%ProgramFiles%\Seed\Seed.exe`, info.Environment.Unicode)
	require.Equal(t, `%ProgramFiles%\Seed\Seed.exe`, info.Target())
}

func TestLinkInfoTargetWins(t *testing.T) {
	info, err := Parse(fixture.LNK(fixture.Link{
		LocalBasePath:     `C:\Seed.exe`,
		EnvironmentTarget: `%SystemRoot%\notepad.exe`,
	}))
	require.NoError(t, err)
	require.Equal(t, `C:\Seed.exe`, info.Target())
}

func TestParseTrimsNULs(t *testing.T) {
	info, err := Parse(fixture.LNK(fixture.Link{
		Unicode:      true,
		IconLocation: "\x00\x00",
		Name:         "Seed\x00",
	}))
	require.NoError(t, err)
	require.Empty(t, info.IconLocation)
	require.Equal(t, "Seed", info.Name)
}

func TestParseIgnoresTrailingData(t *testing.T) {
	info, err := Parse(fixture.LNK(fixture.Link{
		Name:     "Seed",
		Trailing: []byte("garbage after the terminal block"),
	}))
	require.NoError(t, err)
	require.Equal(t, "Seed", info.Name)
}

func TestParseMalformedExtraBlock(t *testing.T) {
	data := fixture.LNK(fixture.Link{Name: "Seed"})
	// replace the terminal block with an undersized darwin block
	block := make([]byte, 16)
	binary.LittleEndian.PutUint32(block[0:4], 16)
	binary.LittleEndian.PutUint32(block[4:8], darwinSignature)
	data = append(data[:len(data)-4], block...)
	data = append(data, 0, 0, 0, 0)

	info, err := Parse(data)
	require.NoError(t, err)
	require.Nil(t, info.Darwin)
}

func TestParseDarwinBlock(t *testing.T) {
	data := fixture.LNK(fixture.Link{Name: "Seed"})
	block := make([]byte, environmentBlockSize)
	binary.LittleEndian.PutUint32(block[0:4], environmentBlockSize)
	binary.LittleEndian.PutUint32(block[4:8], darwinSignature)
	copy(block[ansiTargetStart:], "seed.app")
	copy(block[unicodeTargetStart:], []byte{'s', 0, 'e', 0, 'e', 0, 'd', 0})
	data = append(data[:len(data)-4], block...)
	data = append(data, 0, 0, 0, 0)

	info, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, &Darwin{ANSI: "seed.app", Unicode: "seed"}, info.Darwin)
}

func TestParseTerminalBlock(t *testing.T) {
	data := fixture.LNK(fixture.Link{Name: "Seed"})
	body := data[:len(data)-4]

	for size, expected := range map[byte]error{0: nil, 3: nil, 4: ErrTruncated, 7: ErrTruncated} {
		link := append(append([]byte{}, body...), size, 0, 0, 0)
		_, err := Parse(link)
		if expected == nil {
			require.NoError(t, err, "terminal block of size %d", size)
		} else {
			require.ErrorIs(t, err, expected, "terminal block of size %d", size)
		}
	}
}

func TestParseInvalidHeader(t *testing.T) {
	valid := fixture.LNK(fixture.Link{Name: "Seed"})

	badSize := append([]byte{}, valid...)
	badSize[0] = 0x4D

	badCLSID := append([]byte{}, valid...)
	badCLSID[4] = 0xff

	for name, data := range map[string][]byte{
		"empty":      nil,
		"short":      valid[:0x20],
		"bad size":   badSize,
		"bad clsid":  badCLSID,
		"executable": append([]byte("MZ"), make([]byte, 0x100)...),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			require.ErrorIs(t, err, ErrInvalidHeader)
		})
	}
}

func TestParseTruncated(t *testing.T) {
	data := fixture.LNK(fixture.Link{
		IDList:        []byte{1, 2, 3, 4, 5, 6},
		LocalBasePath: `C:\Seed.exe`,
		Name:          "Seed",
	})
	for _, cut := range []int{0x4C, 0x4C + 1, 0x4C + 4, 0x4C + 20, len(data) - 8} {
		_, err := Parse(data[:cut])
		require.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}
