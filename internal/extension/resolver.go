// Package extension decides which file extension an image should carry on disk,
// based on its declared name and the MIME type reported by the platform.
package extension

import (
	"strings"
)

// jpegAliases are extensions accepted as-is for an image/jpeg MIME type
var jpegAliases = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"mpo":  true,
}

// Normalizer rewrites an image's declared name before it is used as a file name
type Normalizer func(name, mimeType string) string

// Identity keeps the declared name verbatim
func Identity(name, _ string) string {
	return name
}

// Resolve returns the file name to use for an image.
//
// A name without an extension gets the MIME subtype appended. A name that
// already has an extension is returned unchanged, including when that
// extension does not match the MIME subtype. A MIME type without a "/"
// yields no subtype and the name is returned unchanged.
func Resolve(name, mimeType string) string {
	mimeExt := SubtypeOf(mimeType)
	if mimeExt == "" {
		return name
	}

	curExt := strings.ToLower(extOf(name))
	if curExt == "" {
		return name + "." + mimeExt
	}

	if mimeExt == "jpeg" && jpegAliases[curExt] {
		return name
	}

	// Mismatched extensions are kept
	return name
}

// NewNormalizer returns Resolve when fixing is enabled and Identity otherwise
func NewNormalizer(fixExtension bool) Normalizer {
	if fixExtension {
		return Resolve
	}
	return Identity
}

// SubtypeOf returns the part of a MIME type after the first "/", or "" when there is none
func SubtypeOf(mimeType string) string {
	_, subtype, found := strings.Cut(mimeType, "/")
	if !found {
		return ""
	}
	return subtype
}

// extOf returns the text after the last "." in name, without the dot.
// Leading dots do not start an extension, so ".hidden" has none.
func extOf(name string) string {
	name = strings.TrimLeft(name, ".")
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
