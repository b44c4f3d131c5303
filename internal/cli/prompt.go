package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// ErrCanceled is returned when the user dismisses the picker or enters nothing.
var ErrCanceled = errors.New("no image selected")

// imagePatterns are the doodle formats offered in the native picker.
var imagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.bmp", "*.tif", "*.tiff"}

// PickImage opens the native file dialog and returns the chosen image path.
func PickImage() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Select a doodle"),
		zenity.FileFilters{
			{Name: "Images", Patterns: imagePatterns},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	log.Debug().Str("path", path).Msg("Image picked via native dialog")
	return path, nil
}

// PromptForImage asks for an image path on in, writing the prompt to out.
func PromptForImage(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Image path: ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	input = strings.Trim(strings.TrimSpace(input), `"'`)
	if input == "" {
		return "", ErrCanceled
	}
	return input, nil
}
