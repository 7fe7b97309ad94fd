package seedicon

import (
	"encoding/hex"
	"io"
	"os"
	"unicode/utf8"

	"github.com/go-errors/errors"
	"github.com/h2non/filetype"
	sha256 "github.com/minio/sha256-simd"

	"github.com/andrewstucki/seedicon/ico"
	"github.com/andrewstucki/seedicon/lnk"
	"github.com/andrewstucki/seedicon/pe"
)

// Info is a structural report on a launch target or icon file.
type Info struct {
	MIME   string         `json:"mime"`
	SHA256 string         `json:"sha256"`
	Size   int            `json:"size"`
	PE     *pe.Summary    `json:"pe,omitempty"`
	LNK    *lnk.Info      `json:"lnk,omitempty"`
	ICO    *ico.Directory `json:"ico,omitempty"`
}

func mimeFallback(data []byte) string {
	for len(data) > 0 {
		if r, size := utf8.DecodeRune(data); r != utf8.RuneError {
			data = data[size:]
			continue
		}
		return "application/octet-stream"
	}
	return "text/plain"
}

// Inspect determines the file type of the file at path and then enriches the
// information based off of the file type contained.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapPrefix(err, "inspecting file", 0)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WrapPrefix(err, "inspecting file", 0)
	}

	header := data
	if len(header) > headerSize {
		header = header[:headerSize]
	}
	// an empty buffer is the only match error, it falls back below
	kind, _ := filetype.Match(header)
	mime := kind.MIME.Value
	if mime == "" {
		mime = mimeFallback(header)
	}

	hashed := sha256.Sum256(data)
	info := &Info{
		MIME:   mime,
		SHA256: hex.EncodeToString(hashed[:]),
		Size:   len(data),
	}

	switch mime {
	case "application/vnd.microsoft.portable-executable":
		if peFile, err := pe.NewFile(data); err == nil {
			if summary, err := peFile.Summary(); err == nil {
				info.PE = summary
			}
		}
	case shortcutMIME:
		if lnkInfo, err := lnk.Parse(data); err == nil {
			info.LNK = lnkInfo
		}
	case "image/vnd.microsoft.icon", "image/x-icon":
		if directory, err := ico.Parse(data); err == nil {
			info.ICO = directory
		}
	}
	return info, nil
}
