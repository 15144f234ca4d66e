// Package imagex turns camera images into the compact payload stored with a
// muscle photo.
package imagex

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth = 800
	DefaultQuality  = 70

	payloadPrefix = "data:image/jpeg;base64,"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Compress decodes a JPEG, PNG, GIF or WebP image, scales it down to at most
// maxWidth pixels wide and re-encodes it as a JPEG data URL. Images already
// narrower than maxWidth keep their size. Non-positive arguments select the
// defaults.
func Compress(r io.Reader, maxWidth, quality int) (string, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return "", ErrEmptyImage
	}

	dst := Resize(src, maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return payloadPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Resize returns src scaled to maxWidth keeping the aspect ratio. It never
// upsizes.
func Resize(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth {
		return src
	}
	nh := max(1, h*maxWidth/w)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
