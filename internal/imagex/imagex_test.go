package imagex

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func decodePayload(t *testing.T, payload string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(payload, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestCompress_Downscales(t *testing.T) {
	payload, err := Compress(pngOf(t, 200, 100), 50, 80)
	require.NoError(t, err)

	img := decodePayload(t, payload)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestCompress_NeverUpscales(t *testing.T) {
	payload, err := Compress(pngOf(t, 40, 30), 800, 70)
	require.NoError(t, err)

	img := decodePayload(t, payload)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestCompress_DefaultsAndErrors(t *testing.T) {
	_, err := Compress(pngOf(t, 10, 10), 0, 0)
	assert.NoError(t, err)

	_, err = Compress(strings.NewReader("not an image"), 100, 70)
	assert.Error(t, err)
}

func TestResize_KeepsMinimumHeight(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 1))
	dst := Resize(src, 10)
	assert.Equal(t, image.Rect(0, 0, 10, 1), dst.Bounds())
}
