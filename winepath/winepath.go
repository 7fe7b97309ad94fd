// Package winepath translates between Windows paths and the host paths a
// Wineprefix lays them out at.
//
// Drive letters are resolved through the prefix's dosdevices directory when
// going to the host. Going back to Windows syntax, both the dosdevices and
// the drive_X layouts are recognized, and anything else is expressed through
// the Z: drive that Wine maps to the host root. The two directions are not
// inverses of each other.
package winepath

import (
	"strings"
)

const (
	dosDevices  = "dosdevices"
	drivePrefix = "drive_"
	uncDevice   = "unc"
	hostRoot    = `Z:\`
)

// ToHost returns the host path that windowsPath refers to inside prefix.
//
// A drive letter maps to prefix/dosdevices/<letter>:, a UNC share to
// prefix/dosdevices/unc/<server>/<share>, and a path without either is
// placed directly under prefix. UNC and device paths (\\server\share,
// \\?\C:) keep their server, share or drive, following the layout Wine
// creates, rather than having their segments placed straight under
// dosdevices. No normalization happens beyond dropping empty and "."
// components, so ".." segments are kept as they are.
func ToHost(prefix, windowsPath string) string {
	root, segments := parseWindows(windowsPath)

	parts := []string{strings.TrimRight(prefix, "/")}
	switch root.kind {
	case rootDisk:
		parts = append(parts, dosDevices, strings.ToLower(root.drive)+":")
	case rootUNC:
		parts = append(parts, dosDevices, uncDevice)
		parts = append(parts, root.share...)
	}
	parts = append(parts, segments...)
	return strings.Join(parts, "/")
}

// ToWindows returns the Windows path for hostPath as seen from prefix.
//
// Paths under prefix/dosdevices take their drive letter from the first
// directory below it, paths under prefix/drive_X take it from the X, and
// every other path is expressed through Z:. It never fails.
func ToWindows(prefix, hostPath string) string {
	host := splitHost(hostPath)
	base := splitHost(prefix)

	if rest, ok := host.trim(base.child(dosDevices)); ok {
		if len(rest) == 0 {
			return hostRoot
		}
		return fromDevice(rest[0], rest[1:])
	}

	if rest, ok := host.trim(base); ok && len(rest) > 0 && strings.HasPrefix(rest[0], drivePrefix) {
		return drive(strings.TrimPrefix(rest[0], drivePrefix), rest[1:])
	}

	return hostRoot + strings.Join(host.normal(), `\`)
}

func fromDevice(device string, rest []string) string {
	if strings.EqualFold(device, uncDevice) && len(rest) > 0 {
		return `\\` + strings.Join(rest, `\`)
	}
	return drive(strings.TrimSuffix(device, ":"), rest)
}

func drive(letter string, rest []string) string {
	return strings.ToUpper(letter) + `:\` + strings.Join(rest, `\`)
}

// hostPath is a host path split into components. Empty and "." components
// are dropped, ".." is kept so prefix matching stays literal.
type hostPath struct {
	abs        bool
	components []string
}

func splitHost(p string) hostPath {
	h := hostPath{abs: strings.HasPrefix(p, "/")}
	for _, c := range strings.Split(p, "/") {
		if c == "" || c == "." {
			continue
		}
		h.components = append(h.components, c)
	}
	return h
}

func (h hostPath) child(name string) hostPath {
	components := make([]string, 0, len(h.components)+1)
	components = append(components, h.components...)
	return hostPath{abs: h.abs, components: append(components, name)}
}

// trim strips base from the front of h component by component and returns
// the normal components left over.
func (h hostPath) trim(base hostPath) ([]string, bool) {
	if h.abs != base.abs || len(base.components) > len(h.components) {
		return nil, false
	}
	for i, c := range base.components {
		if h.components[i] != c {
			return nil, false
		}
	}
	return hostPath{components: h.components[len(base.components):]}.normal(), true
}

func (h hostPath) normal() []string {
	normal := make([]string, 0, len(h.components))
	for _, c := range h.components {
		if c == ".." {
			continue
		}
		normal = append(normal, c)
	}
	return normal
}
