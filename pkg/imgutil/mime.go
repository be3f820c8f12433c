package imgutil

import (
	"encoding/base64"
	"regexp"
	"strings"
)

var imageType = regexp.MustCompile(`^image/.+$`)

// IsImageType reports whether mimeType names an image type.
func IsImageType(mimeType string) bool {
	return imageType.MatchString(mimeType)
}

// ExtensionFor converts an image MIME type to a file extension. image/jpeg
// becomes ".jpg"; a non-image type yields ".".
func ExtensionFor(mimeType string) string {
	ext := ""
	if IsImageType(mimeType) {
		ext = strings.TrimPrefix(mimeType, "image/")
	}
	if ext == "jpeg" {
		ext = "jpg"
	}
	return "." + ext
}

// ReplaceExtension swaps the extension of name for the one matching
// mimeType. Names without an extension are returned unchanged.
func ReplaceExtension(name, mimeType string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 || strings.ContainsAny(name[idx+1:], `/\`) {
		return name
	}
	return name[:idx] + ExtensionFor(mimeType)
}

// DataURL encodes data as a base64 data: URL.
func DataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
