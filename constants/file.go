package constants

import "strings"

// ImageMediaTypes maps accepted image extensions to their media type.
var ImageMediaTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// DefaultImageMediaType is used when the media type cannot be detected.
const DefaultImageMediaType = "image/jpeg"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
