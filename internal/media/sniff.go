package media

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// SniffImage decodes the header of an uploaded file and reports its format.
// Supported formats are png, jpeg, gif and webp; anything else is rejected
// before the bytes ever reach a provider.
func SniffImage(data []byte) (format string, err error) {
	_, format, err = image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unsupported or corrupt image: %w", err)
	}
	return format, nil
}
