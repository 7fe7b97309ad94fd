package seedicon

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-errors/errors"
	"github.com/h2non/filetype"

	"github.com/andrewstucki/seedicon/lnk"
)

var executableTypes = map[string]bool{
	"application/vnd.microsoft.portable-executable": true,
	"application/x-executable":                      true,
	"application/x-mach-binary":                     true,
}

// Classify inspects the file at hostPath. Native executables win over
// shortcut parsing, and anything that is not a well formed shortcut is
// Unclassified. Read failures are returned and satisfy IsIOError.
func Classify(hostPath string) (Resolution, error) {
	f, err := os.Open(hostPath)
	if err != nil {
		return Resolution{}, errors.WrapPrefix(err, "classifying target", 0)
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Resolution{}, errors.WrapPrefix(err, "classifying target", 0)
	}
	header = header[:n]

	kind, err := filetype.Match(header)
	if err == nil && executableTypes[kind.MIME.Value] {
		slog.Debug("seedicon: host executable", "path", hostPath, "mime", kind.MIME.Value)
		return Resolution{Kind: HostExecutable, Path: hostPath}, nil
	}
	if !lnkMatcher(header) {
		return Resolution{Kind: Unclassified, Path: hostPath}, nil
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return Resolution{}, errors.WrapPrefix(err, "classifying target", 0)
	}
	info, err := lnk.Parse(append(header, rest...))
	if err != nil {
		slog.Debug("seedicon: unparseable shortcut", "path", hostPath, "err", err)
		return Resolution{Kind: Unclassified, Path: hostPath}, nil
	}

	if info.IconLocation != "" {
		return Resolution{Kind: WindowsIconReference, Path: info.IconLocation}, nil
	}
	if target := info.Target(); target != "" {
		return Resolution{Kind: WindowsExecutableReference, Path: target}, nil
	}
	return Resolution{}, errors.New(ErrLinkHasNoTarget)
}
