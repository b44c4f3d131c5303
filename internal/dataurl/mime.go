package dataurl

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"  // register GIF decoder for image.DecodeConfig
	_ "image/jpeg" // register JPEG decoder for image.DecodeConfig
	_ "image/png"  // register PNG decoder for image.DecodeConfig
	"io"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder for image.DecodeConfig
	_ "golang.org/x/image/tiff" // register TIFF decoder for image.DecodeConfig
	_ "golang.org/x/image/webp" // register WebP decoder for image.DecodeConfig
)

// DefaultMIMEType is the type the enhancer tags images with unless told otherwise.
const DefaultMIMEType = "image/png"

// formatMIMETypes maps image.DecodeConfig format names to MIME types.
var formatMIMETypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// ImageInfo describes a sniffed image payload.
type ImageInfo struct {
	MIMEType string
	Width    int
	Height   int
}

// extMIMETypes maps lower-case file extensions to MIME types.
var extMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// sniffLimit bounds how much of a payload is decoded. Headers of every
// registered format fit well inside it.
const sniffLimit = 64 << 10

// Sniff decodes the header of a base64 payload and reports its real format and
// dimensions. Only the image header is read, not the full pixel data.
func Sniff(payload string) (ImageInfo, bool) {
	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(strings.TrimSpace(payload)))
	head, err := io.ReadAll(io.LimitReader(dec, sniffLimit))
	if err != nil && len(head) == 0 {
		return ImageInfo{}, false
	}
	return SniffBytes(head)
}

// SniffBytes is Sniff for raw image bytes.
func SniffBytes(data []byte) (ImageInfo, bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, false
	}
	mt, ok := formatMIMETypes[format]
	if !ok {
		return ImageInfo{}, false
	}
	return ImageInfo{MIMEType: mt, Width: cfg.Width, Height: cfg.Height}, true
}

// MIMETypeForExt returns the image MIME type for a file extension such as ".PNG".
func MIMETypeForExt(ext string) (string, bool) {
	mt, ok := extMIMETypes[strings.ToLower(ext)]
	return mt, ok
}

// DetectMIME resolves the MIME type for a data URL: the sniffed payload format
// wins, then an image/* type from the prefix, then fallback.
func DetectMIME(d DataURL, fallback string) string {
	if info, ok := Sniff(d.Payload); ok {
		return info.MIMEType
	}
	if strings.HasPrefix(d.MIMEType, "image/") {
		return d.MIMEType
	}
	if fallback == "" {
		return DefaultMIMEType
	}
	return fallback
}
