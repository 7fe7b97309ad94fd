package winepath

import "strings"

type rootKind int

const (
	rootNone rootKind = iota
	rootDisk
	rootUNC
)

type windowsRoot struct {
	kind  rootKind
	drive string
	share []string
}

func isSeparator(c byte) bool {
	return c == '\\' || c == '/'
}

func hasDrive(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseWindows splits p into its root and its path segments.
func parseWindows(p string) (windowsRoot, []string) {
	var root windowsRoot

	switch {
	case len(p) >= 4 && isSeparator(p[0]) && isSeparator(p[1]) && (p[2] == '?' || p[2] == '.') && isSeparator(p[3]):
		// verbatim and device namespaces: \\?\C:\, \\?\UNC\server\share, \\.\C:
		rest := p[4:]
		if hasDrive(rest) {
			root = windowsRoot{kind: rootDisk, drive: rest[:1]}
			p = rest[2:]
			break
		}
		if len(rest) >= 4 && strings.EqualFold(rest[:3], "unc") && isSeparator(rest[3]) {
			root, p = parseShare(rest[4:])
			break
		}
		p = rest
	case len(p) >= 2 && isSeparator(p[0]) && isSeparator(p[1]):
		root, p = parseShare(p[2:])
	case hasDrive(p):
		root = windowsRoot{kind: rootDisk, drive: p[:1]}
		p = p[2:]
	}

	return root, segments(p)
}

func parseShare(p string) (windowsRoot, string) {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '\\' || r == '/' })
	n := 2
	if len(parts) < n {
		n = len(parts)
	}
	root := windowsRoot{kind: rootUNC, share: parts[:n]}
	return root, strings.Join(parts[n:], `\`)
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(p, func(r rune) bool { return r == '\\' || r == '/' }) {
		if s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}
