// Package seedicon resolves desktop icons for applications installed inside
// Wine and Proton prefixes.
package seedicon

import (
	"github.com/h2non/filetype"
)

// size for mime detection, office file
// detection requires ~8kb to detect properly
const headerSize = 8192

const shortcutMIME = "application/x-ms-shortcut"

var addedTypes = map[string]func([]byte) bool{
	"lnk": lnkMatcher,
}

func init() {
	for extension, matcher := range addedTypes {
		filetype.AddMatcher(filetype.NewType(extension, shortcutMIME), matcher)
	}
}

func lnkMatcher(buf []byte) bool {
	return len(buf) > 3 && (buf[0] == 0x4C && buf[1] == 0x00 && buf[2] == 0x00 && buf[3] == 0x00)
}

// Kind is the classification of a launch target.
type Kind int

const (
	// Unclassified targets are neither executables nor shortcuts.
	Unclassified Kind = iota
	// HostExecutable is a PE, ELF or Mach-O image on the host.
	HostExecutable
	// WindowsIconReference is a shortcut naming an icon location.
	WindowsIconReference
	// WindowsExecutableReference is a shortcut naming only a target.
	WindowsExecutableReference
)

func (k Kind) String() string {
	switch k {
	case HostExecutable:
		return "host-executable"
	case WindowsIconReference:
		return "windows-icon"
	case WindowsExecutableReference:
		return "windows-executable"
	}
	return "unclassified"
}

// Resolution is the outcome of Classify. Path is a host path for
// Unclassified and HostExecutable, and a Windows path otherwise.
type Resolution struct {
	Kind Kind   `json:"kind"`
	Path string `json:"path"`
}

// Icon is a resolved icon: either a written PNG or a generic theme icon name.
type Icon struct {
	Path string `json:"path,omitempty"`
	Name string `json:"name,omitempty"`
}

// String returns the value for a desktop entry's Icon key.
func (i Icon) String() string {
	if i.Path != "" {
		return i.Path
	}
	return i.Name
}
