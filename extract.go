package seedicon

import (
	"log/slog"

	"github.com/go-errors/errors"

	"github.com/andrewstucki/seedicon/ico"
	"github.com/andrewstucki/seedicon/pe"
)

// ExtractFromIconContainer writes the widest image of the icon container at
// icoPath to dest as a PNG.
func ExtractFromIconContainer(dest, icoPath string) error {
	if err := ico.ExtractFile(dest, icoPath); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// ExtractFromExecutable writes the first icon group of the PE image at
// exePath to dest as a PNG. It reports false when the file cannot be mapped,
// is not a PE32 or PE32+ image, or carries no decodable icon. Only a failure
// to write dest is an error.
func ExtractFromExecutable(dest, exePath string) (bool, error) {
	f, err := pe.Open(exePath)
	if err != nil {
		slog.Debug("seedicon: not a mappable PE image", "path", exePath, "err", err)
		return false, nil
	}
	defer f.Close()

	container, err := f.Icon()
	if err != nil {
		slog.Debug("seedicon: no icon group", "path", exePath, "err", err)
		return false, nil
	}

	directory, err := ico.Parse(container)
	if err != nil {
		slog.Debug("seedicon: reassembled icon is invalid", "path", exePath, "err", err)
		return false, nil
	}
	entry, err := directory.Best()
	if err != nil {
		return false, nil
	}
	img, err := entry.Decode()
	if err != nil {
		slog.Debug("seedicon: icon image does not decode", "path", exePath, "width", entry.Width, "err", err)
		return false, nil
	}

	if err := ico.WritePNG(dest, img); err != nil {
		return false, errors.Wrap(err, 0)
	}
	return true, nil
}
