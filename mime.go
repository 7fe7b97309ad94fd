package seedicon

import (
	"mime"
	"path"
	"strings"

	"github.com/erni27/imcache"
	"github.com/h2non/filetype"
)

// FallbackIconName is used when nothing more specific is known.
const FallbackIconName = "applications-other"

var iconNameCache = imcache.New[string, string]()

var genericIcons = map[string]string{
	"application/vnd.microsoft.portable-executable": "application-x-executable",
	"application/x-executable":                      "application-x-executable",
	"application/x-mach-binary":                     "application-x-executable",
	"application/x-msdownload":                      "application-x-executable",
	"application/x-ms-dos-executable":               "application-x-executable",
	"application/x-msi":                             "application-x-executable",
	"application/x-ms-installer":                    "application-x-executable",
	"application/x-bat":                             "text-x-script",
	"application/x-sh":                              "text-x-script",
	"application/x-shellscript":                     "text-x-script",
	"application/zip":                               "package-x-generic",
	"application/x-7z-compressed":                   "package-x-generic",
	"application/x-rar-compressed":                  "package-x-generic",
	"application/vnd.rar":                           "package-x-generic",
	"application/x-tar":                             "package-x-generic",
	"application/gzip":                              "package-x-generic",
	"application/x-bzip2":                           "package-x-generic",
	"application/x-xz":                              "package-x-generic",
	"application/x-iso9660-image":                   "media-optical",
	"application/pdf":                               "x-office-document",
	"application/rtf":                               "x-office-document",
	"application/msword":                            "x-office-document",
	"application/vnd.ms-excel":                      "x-office-spreadsheet",
	"application/vnd.ms-powerpoint":                 "x-office-presentation",
	"application/x-font-ttf":                        "font-x-generic",
	"application/font-sfnt":                         "font-x-generic",
	"application/font-woff":                         "font-x-generic",
	"application/vnd.ms-fontobject":                 "font-x-generic",
	"application/x-ms-shortcut":                     "emblem-symbolic-link",
	"application/x-mswinurl":                        "emblem-symbolic-link",
	"text/html":                                     "text-html",
}

// windowsTypes covers extensions common in prefixes that neither filetype nor
// the system MIME database are guaranteed to know.
var windowsTypes = map[string]string{
	".txt": "text/plain",
	".log": "text/plain",
	".ini": "text/plain",
	".cfg": "text/plain",
	".bat": "application/x-bat",
	".cmd": "application/x-bat",
	".msi": "application/x-msi",
	".url": "application/x-mswinurl",
	".dll": "application/x-msdownload",
}

var genericPrefixes = []struct {
	prefix string
	icon   string
}{
	{"image/", "image-x-generic"},
	{"audio/", "audio-x-generic"},
	{"video/", "video-x-generic"},
	{"font/", "font-x-generic"},
	{"text/", "text-x-generic"},
	{"application/vnd.openxmlformats-officedocument.spreadsheetml", "x-office-spreadsheet"},
	{"application/vnd.openxmlformats-officedocument.presentationml", "x-office-presentation"},
	{"application/vnd.openxmlformats-officedocument", "x-office-document"},
	{"application/vnd.oasis.opendocument.spreadsheet", "x-office-spreadsheet"},
	{"application/vnd.oasis.opendocument.presentation", "x-office-presentation"},
	{"application/vnd.oasis.opendocument", "x-office-document"},
}

// extension handles both host and Windows separators.
func extension(p string) string {
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		p = p[i+1:]
	}
	return strings.ToLower(path.Ext(p))
}

func mimeForExtension(ext string) string {
	if kind := filetype.GetType(strings.TrimPrefix(ext, ".")); kind.MIME.Value != "" {
		return kind.MIME.Value
	}
	if value, ok := windowsTypes[ext]; ok {
		return value
	}
	if value := mime.TypeByExtension(ext); value != "" {
		if mediaType, _, err := mime.ParseMediaType(value); err == nil {
			return mediaType
		}
	}
	return ""
}

func iconForMIME(mimeType string) string {
	if icon, ok := genericIcons[mimeType]; ok {
		return icon
	}
	for _, generic := range genericPrefixes {
		if strings.HasPrefix(mimeType, generic.prefix) {
			return generic.icon
		}
	}
	return FallbackIconName
}

// GenericIconName maps the extension of location, a host or Windows path, to a
// freedesktop generic icon name.
func GenericIconName(location string) string {
	ext := extension(location)
	if ext == "" {
		return FallbackIconName
	}
	if icon, ok := iconNameCache.Get(ext); ok {
		return icon
	}
	icon := iconForMIME(mimeForExtension(ext))
	iconNameCache.Set(ext, icon, imcache.WithNoExpiration())
	return icon
}
