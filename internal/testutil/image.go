package testutil

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// PNG returns an encoded solid-color image of the given size
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}
