package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"

	"github.com/fpang/ai-doodle-enhancer/internal/dataurl"
)

// ImageDetails is what the CLI knows about an image before sending it.
// Camera fields come from EXIF and are empty for canvas exports.
type ImageDetails struct {
	Path        string
	Bytes       int64
	MIMEType    string
	Width       int
	Height      int
	CameraMake  string
	CameraModel string
	Taken       time.Time
}

// HasEXIF reports whether any camera metadata was found.
func (d *ImageDetails) HasEXIF() bool {
	return d.CameraMake != "" || d.CameraModel != "" || !d.Taken.IsZero()
}

// InspectImage reads the format, size and, for photographed sketches, the EXIF
// camera and capture date of the image at path. Missing EXIF is not an error.
func InspectImage(path string) (*ImageDetails, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	details := &ImageDetails{Path: path, Bytes: int64(len(data)), MIMEType: mimeTypeFor(path, data)}
	if info, ok := dataurl.SniffBytes(data); ok {
		details.Width = info.Width
		details.Height = info.Height
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	exifData, err := imagemeta.Decode(file)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata")
		return details, nil
	}

	details.CameraMake = strings.TrimSpace(exifData.Make)
	details.CameraModel = strings.TrimSpace(exifData.Model)
	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		details.Taken = exifData.DateTimeOriginal()
	case !exifData.CreateDate().IsZero():
		details.Taken = exifData.CreateDate()
	case !exifData.ModifyDate().IsZero():
		details.Taken = exifData.ModifyDate()
	}
	return details, nil
}

// FormatDetails renders d as the aligned key/value block printed by `info`.
func FormatDetails(d *ImageDetails) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File:     %s\n", d.Path)
	fmt.Fprintf(&sb, "Size:     %d bytes\n", d.Bytes)
	fmt.Fprintf(&sb, "Type:     %s\n", d.MIMEType)
	if d.Width > 0 {
		fmt.Fprintf(&sb, "Pixels:   %dx%d\n", d.Width, d.Height)
	}
	if d.CameraMake != "" || d.CameraModel != "" {
		fmt.Fprintf(&sb, "Camera:   %s\n", strings.TrimSpace(d.CameraMake+" "+d.CameraModel))
	}
	if !d.Taken.IsZero() {
		fmt.Fprintf(&sb, "Taken:    %s\n", d.Taken.Format(time.RFC3339))
	}
	return sb.String()
}
