// Package startmenu finds the Start Menu shortcuts installed into a prefix.
package startmenu

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"

	"github.com/andrewstucki/seedicon/winepath"
)

// ErrNotFound is returned by Find when no shortcut has the requested name.
var ErrNotFound = errors.Errorf("start menu item not found")

const shortcutExtension = ".lnk"

// Item is a Start Menu shortcut.
type Item struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Dirs returns the per-user and the system Start Menu directories of prefix,
// in search order.
func Dirs(prefix, user string) []string {
	return []string{
		filepath.Join(prefix, "drive_c", "users", user, "AppData", "Roaming", "Microsoft", "Windows", "Start Menu"),
		filepath.Join(prefix, "drive_c", "ProgramData", "Microsoft", "Windows", "Start Menu"),
	}
}

// walk visits every regular file below the Start Menu directories. Entries
// that cannot be read are skipped.
func walk(prefix, user string, fn func(path string, entry fs.DirEntry) bool) {
	for _, dir := range Dirs(prefix, user) {
		stop := false
		_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				slog.Debug("seedicon: skipping start menu entry", "path", path, "err", err)
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			if !fn(path, entry) {
				stop = true
				return filepath.SkipAll
			}
			return nil
		})
		if stop {
			return
		}
	}
}

// List returns every shortcut in the Start Menu of prefix with its Windows
// location. A prefix without a Start Menu has no items.
func List(prefix, user string) []Item {
	items := []Item{}
	walk(prefix, user, func(path string, entry fs.DirEntry) bool {
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), shortcutExtension) {
			return true
		}
		slog.Debug("seedicon: found start menu item", "path", path)
		items = append(items, Item{
			Name:     strings.TrimSuffix(name, filepath.Ext(name)),
			Location: winepath.ToWindows(prefix, path),
		})
		return true
	})
	return items
}

// Find returns the Windows location of the first shortcut named name,
// compared without regard to case.
func Find(prefix, user, name string) (string, error) {
	location := ""
	walk(prefix, user, func(path string, entry fs.DirEntry) bool {
		if !strings.EqualFold(entry.Name(), name+shortcutExtension) {
			return true
		}
		location = winepath.ToWindows(prefix, path)
		return false
	})
	if location == "" {
		return "", errors.New(ErrNotFound)
	}
	return location, nil
}
