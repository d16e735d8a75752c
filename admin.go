package reviewcms

import (
	"crypto/subtle"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxImportSize = 5 << 20 // 5MB

func handleCSRFToken(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"csrfToken": CsrfToken(c)})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		a.Logger.Warn("admin login failed", zap.String("ip", ip))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": true})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleRevalidate drops cached data for a tag, the way a content webhook
// tells readers that entries changed. The tag defaults to the review tag.
func (a *App) handleRevalidate(c echo.Context) error {
	tag := c.FormValue("tag")
	if tag == "" {
		tag = CacheTagReviews
	}
	revalidated := a.Cache.Revalidate(tag)
	a.Logger.Info("revalidate", zap.String("tag", tag), zap.Bool("revalidated", revalidated))
	return c.JSON(http.StatusOK, map[string]any{
		"revalidated": revalidated,
		"now":         time.Now().UnixMilli(),
	})
}

// handleImport upserts the reviews in an uploaded JSON or YAML file.
func (a *App) handleImport(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No records file provided")
	}
	if file.Size > maxImportSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large (max 5MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	reviews, err := DecodeRecords(data, filepath.Ext(file.Filename))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if err := a.Store.ImportReviews(reviews); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("imported reviews", zap.Int("count", len(reviews)), zap.String("file", file.Filename))
	return c.JSON(http.StatusOK, map[string]int{"imported": len(reviews)})
}

func (a *App) handleAdminDelete(c echo.Context) error {
	slug := c.Param("slug")
	if err := a.Store.DeleteReview(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}
