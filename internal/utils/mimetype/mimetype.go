// Package mimetype resolves the Content-Type sent with a direct upload.
package mimetype

import (
	"path"
	"slices"
	"strings"
)

// Default is used when nothing better can be inferred. It is applied even to
// files that are plainly not PNGs; clients depend on that.
const Default = "image/png"

var byExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
}

// Resolve keeps declared when it is an image type and otherwise infers the
// type from the file extension, case-insensitively.
func Resolve(fileName, declared string) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return FromFileName(fileName)
}

// FromFileName maps the extension of fileName, falling back to Default.
func FromFileName(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if t, ok := byExtension[ext]; ok {
		return t
	}
	return Default
}

// Types lists every type FromFileName can return, sorted.
func Types() []string {
	types := make([]string, 0, len(byExtension))
	for _, t := range byExtension {
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	return types
}
