package reviewcms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testReviews() []Review {
	return []Review{
		{ID: 1, Slug: "hollow-knight", Title: "Hollow Knight", Subtitle: "A haunting metroidvania", Body: "Bugs and **bosses**.", PublishedAt: "2023-05-06T10:00:00.000Z", URL: "hollow-knight.jpg"},
		{ID: 2, Slug: "stardew-valley", Title: "Stardew Valley", Subtitle: "Farming, fishing and friendship", Body: "Crops.", PublishedAt: "2023-05-08T09:30:00.000Z", URL: "stardew-valley.jpg"},
		{ID: 3, Slug: "celeste", Title: "Celeste", Subtitle: "Climb the mountain", Body: "Strawberries.", PublishedAt: "2023-04-20T12:00:00.000Z", URL: "celeste.jpg"},
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeSeed(t *testing.T, reviews []Review) string {
	t.Helper()
	data, err := json.Marshal(reviews)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

const testPassword = "hunter2"

// newTestApp opens an App over a seeded temporary store. cfg fields left
// empty take their defaults.
func newTestApp(t *testing.T, cfg SiteConfig) *App {
	t.Helper()
	dir := t.TempDir()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(dir, "reviews.db")
	}
	if cfg.SeedPath == "" {
		cfg.SeedPath = writeSeed(t, testReviews())
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = filepath.Join(dir, "public")
	}
	if cfg.URL == "" {
		cfg.URL = "https://reviews.example.com"
	}
	if cfg.APIRateLimit == 0 {
		cfg.APIRateLimit = 1000
	}
	a := New(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, a.Open())
	t.Cleanup(func() { a.Close() })
	return a
}

func newAdminApp(t *testing.T) *App {
	return newTestApp(t, SiteConfig{
		AdminPassword: testPassword,
		SessionSecret: "0123456789abcdef0123456789abcdef",
	})
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
