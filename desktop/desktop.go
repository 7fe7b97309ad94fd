// Package desktop writes freedesktop desktop entries for seed applications.
package desktop

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
	"github.com/google/shlex"
)

// DefaultCategory groups entries that do not name a category.
const DefaultCategory = "X-Seedicon"

// Entry is the content of an application desktop entry.
type Entry struct {
	Name       string
	Comment    string
	Exec       string
	Icon       string
	Categories []string
}

// nameEscaper keeps "_" free to separate the seed from the app.
var nameEscaper = strings.NewReplacer("%", "%25", "_", "%5F", "/", "%2F")

func fileName(seed, app, extension string) string {
	return nameEscaper.Replace(seed) + "_" + nameEscaper.Replace(app) + extension
}

// IconFile is the PNG an application's icon is written to.
func IconFile(dir, seed, app string) string {
	return filepath.Join(dir, fileName(seed, app, ".png"))
}

// EntryFile is the desktop entry written for an application.
func EntryFile(dir, seed, app string) string {
	return filepath.Join(dir, fileName(seed, app, ".desktop"))
}

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

var listEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// Bytes renders the entry.
func (e Entry) Bytes() []byte {
	categories := e.Categories
	if len(categories) == 0 {
		categories = []string{DefaultCategory}
	}

	var buf bytes.Buffer
	buf.WriteString("[Desktop Entry]\n")
	buf.WriteString("Type=Application\n")
	buf.WriteString("Name=" + valueEscaper.Replace(e.Name) + "\n")
	if e.Comment != "" {
		buf.WriteString("Comment=" + valueEscaper.Replace(e.Comment) + "\n")
	}
	buf.WriteString("Exec=" + valueEscaper.Replace(e.Exec) + "\n")
	if e.Icon != "" {
		buf.WriteString("Icon=" + valueEscaper.Replace(e.Icon) + "\n")
	}
	buf.WriteString("Categories=")
	for _, category := range categories {
		buf.WriteString(listEscaper.Replace(category) + ";")
	}
	buf.WriteString("\n")
	buf.WriteString("Terminal=false\n")
	return buf.Bytes()
}

// Write replaces the file at path with the rendered entry.
func (e Entry) Write(path string) error {
	if err := os.WriteFile(path, e.Bytes(), 0o644); err != nil {
		return errors.WrapPrefix(err, "writing desktop entry", 0)
	}
	return nil
}

// characters that force an Exec argument to be quoted
const reserved = " \t\n\"'\\><~|&;$*?#()`"

var quotedEscaper = strings.NewReplacer(
	`"`, `\"`,
	"`", "\\`",
	`$`, `\$`,
	`\`, `\\`,
)

// Quote makes arg a single Exec argument. Field codes are not expanded, so
// every % is doubled.
func Quote(arg string) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	if arg != "" && !strings.ContainsAny(arg, reserved) {
		return arg
	}
	return `"` + quotedEscaper.Replace(arg) + `"`
}

// Wine is the wine binary of runtime, or the one on PATH when runtime is
// empty.
func Wine(runtime string) string {
	if runtime == "" {
		return "wine"
	}
	return filepath.Join(runtime, "bin", "wine")
}

// Exec is the command line that starts the application at windowsPath
// inside prefix. arguments are split with shell rules and passed after it.
func Exec(prefix, runtime, windowsPath, arguments string) (string, error) {
	args, err := shlex.Split(arguments)
	if err != nil {
		return "", errors.WrapPrefix(err, "splitting arguments", 0)
	}

	command := []string{"env", Quote("WINEPREFIX=" + prefix), Quote(Wine(runtime)), "start", Quote(windowsPath)}
	for _, arg := range args {
		command = append(command, Quote(arg))
	}
	return strings.Join(command, " "), nil
}
