package llm

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/fuel-tracker/constants"
)

// DetectMediaType sniffs an image's media type, falling back to JPEG for
// anything that is not a recognised image format.
func DetectMediaType(image []byte) string {
	mt := http.DetectContentType(image)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	for _, known := range constants.ImageMediaTypes {
		if mt == known {
			return mt
		}
	}
	return constants.DefaultImageMediaType
}

// DataURL encodes an image as a base64 data URL.
func DataURL(image []byte, mediaType string) string {
	if mediaType == "" {
		mediaType = DetectMediaType(image)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
