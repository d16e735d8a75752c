package reviewcms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an image from src, downscales it to maxImageWidth,
// and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	base := Slugify(strings.TrimSuffix(originalName, filepath.Ext(originalName)))
	if base == "" {
		base = "image"
	}

	return Image{
		Filename:     base + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// uniqueFilename appends a counter until the name is free both on disk and
// in the images table.
func (a *App) uniqueFilename(name string) (string, error) {
	dir := filepath.Join(a.Config.StaticDir, a.uploadsDir())
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for counter := 1; ; counter++ {
		if counter > 1 {
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
		}
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			continue
		}
		taken, err := a.Store.HasImage(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// handleImageUpload stores a cover image. When the form carries a slug the
// review's image relation is pointed at the new file.
func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	img.Filename, err = a.uniqueFilename(img.Filename)
	if err != nil {
		return err
	}

	dir := filepath.Join(a.Config.StaticDir, a.uploadsDir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(img); err != nil {
		return err
	}

	if slug := strings.TrimSpace(c.FormValue("slug")); slug != "" {
		if err := a.Store.SetReviewImage(slug, img.Filename); err != nil {
			if errors.Is(err, ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Review not found: "+slug)
			}
			return err
		}
		a.Cache.Invalidate()
	}

	a.Logger.Info("image uploaded", zap.String("filename", img.Filename), zap.Int("bytes", img.Size))
	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return echo.NewHTTPError(http.StatusBadRequest, "Filename required")
	}

	path := filepath.Join(a.Config.StaticDir, a.uploadsDir(), filename)
	_ = os.Remove(path) // already gone is fine

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	if images == nil {
		images = []Image{}
	}
	return c.JSON(http.StatusOK, images)
}
