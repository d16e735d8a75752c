package reviewcms

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImageDownscales(t *testing.T) {
	img, data, err := processImage(bytes.NewReader(testPNG(t, 1600, 900)), "Hollow Knight Cover.png")
	require.NoError(t, err)

	assert.Equal(t, "hollow-knight-cover.jpg", img.Filename)
	assert.Equal(t, "Hollow Knight Cover.png", img.OriginalName)
	assert.Equal(t, 800, img.Width)
	assert.Equal(t, 450, img.Height)
	assert.Equal(t, len(data), img.Size)
	assert.NotEmpty(t, img.UploadedAt)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 450, cfg.Height)
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	img, _, err := processImage(bytes.NewReader(testPNG(t, 320, 200)), "???.png")
	require.NoError(t, err)
	assert.Equal(t, "image.jpg", img.Filename)
	assert.Equal(t, 320, img.Width)
	assert.Equal(t, 200, img.Height)
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, _, err := processImage(strings.NewReader("not an image"), "x.png")
	assert.Error(t, err)
}

func TestUniqueFilename(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	require.NoError(t, a.Store.SaveImage(Image{Filename: "cover.jpg", OriginalName: "cover.png", UploadedAt: "2024-01-01T00:00:00Z"}))
	require.NoError(t, a.Store.SaveImage(Image{Filename: "cover-2.jpg", OriginalName: "cover.png", UploadedAt: "2024-01-01T00:00:00Z"}))

	name, err := a.uniqueFilename("cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cover-3.jpg", name)

	name, err = a.uniqueFilename("fresh.jpg")
	require.NoError(t, err)
	assert.Equal(t, "fresh.jpg", name)
}
