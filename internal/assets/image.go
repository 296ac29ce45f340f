package assets

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// JPEGQuality is the re-encode quality for uploaded avatars
	JPEGQuality = 80

	// MaxImageEdge bounds the longest side of an uploaded avatar
	MaxImageEdge = 1024

	ContentTypeJPEG = "image/jpeg"
)

// EncodeJPEG decodes an uploaded image, bounds its size and re-encodes it as JPEG
func EncodeJPEG(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrValidation
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxImageEdge || b.Dy() > MaxImageEdge {
		img = imaging.Fit(img, MaxImageEdge, MaxImageEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// NewAvatarKey returns a fresh storage key for an avatar image
func NewAvatarKey() string {
	return "avatars/" + uuid.NewString() + ".jpg"
}
