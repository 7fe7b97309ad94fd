package seedicon

import (
	"log/slog"

	"github.com/go-errors/errors"

	"github.com/andrewstucki/seedicon/ico"
	"github.com/andrewstucki/seedicon/winepath"
)

// Resolve finds the icon for the application at windowsPath inside prefix,
// writing it to dest when one can be extracted. Extraction failures fall back
// to a generic icon name. Classification errors and failures to write dest
// are returned.
func Resolve(prefix, windowsPath, dest string) (Icon, error) {
	host := winepath.ToHost(prefix, windowsPath)
	resolution, err := Classify(host)
	if err != nil {
		return Icon{}, err
	}
	slog.Debug("seedicon: classified target", "path", host, "kind", resolution.Kind, "resolved", resolution.Path)

	switch resolution.Kind {
	case WindowsIconReference:
		err := ExtractFromIconContainer(dest, winepath.ToHost(prefix, resolution.Path))
		if err == nil {
			return Icon{Path: dest}, nil
		}
		var writeErr *ico.WriteError
		if errors.As(err, &writeErr) {
			return Icon{}, err
		}
		slog.Debug("seedicon: icon container extraction failed", "location", resolution.Path, "err", err)
		return Icon{Name: GenericIconName(resolution.Path)}, nil
	case WindowsExecutableReference:
		return extractOrFallback(dest, winepath.ToHost(prefix, resolution.Path))
	case HostExecutable:
		return extractOrFallback(dest, resolution.Path)
	}
	return Icon{Name: GenericIconName(resolution.Path)}, nil
}

func extractOrFallback(dest, hostPath string) (Icon, error) {
	ok, err := ExtractFromExecutable(dest, hostPath)
	if err != nil {
		return Icon{}, err
	}
	if ok {
		return Icon{Path: dest}, nil
	}
	return Icon{Name: GenericIconName(hostPath)}, nil
}
