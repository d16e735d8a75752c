package reviewcms

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/eringen/reviewcms/query"
)

// ErrInvalidReview is returned when a review cannot be stored as given.
var ErrInvalidReview = errors.New("reviewcms: invalid review")

// Store wraps a SQLite database holding reviews and uploaded image metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the snapshot reload read while an import writes; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    subtitle TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    published_at TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const reviewColumns = `id, slug, title, subtitle, body, published_at, image_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.Slug, &r.Title, &r.Subtitle, &r.Body, &r.PublishedAt, &r.URL)
	return r, err
}

// ListReviews returns every review ordered by id.
func (s *Store) ListReviews() ([]Review, error) {
	rows, err := s.db.Query(`SELECT ` + reviewColumns + ` FROM reviews ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// CountReviews returns the number of stored reviews.
func (s *Store) CountReviews() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n)
	return n, err
}

// GetReview returns a single review by slug, or sql.ErrNoRows.
func (s *Store) GetReview(slug string) (Review, error) {
	return scanReview(s.db.QueryRow(`SELECT `+reviewColumns+` FROM reviews WHERE slug = ?`, slug))
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const upsertReview = `
INSERT INTO reviews (id, slug, title, subtitle, body, published_at, image_url)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET
    title = excluded.title,
    subtitle = excluded.subtitle,
    body = excluded.body,
    published_at = excluded.published_at,
    image_url = excluded.image_url`

func saveReview(db execer, r Review) error {
	if err := ValidateReview(r); err != nil {
		return err
	}
	var id any
	if r.ID > 0 {
		id = r.ID
	}
	_, err := db.Exec(upsertReview, id, r.Slug, r.Title, r.Subtitle, r.Body, r.PublishedAt, r.URL)
	return err
}

// SaveReview upserts a review keyed by slug. A zero ID lets SQLite assign one.
func (s *Store) SaveReview(r Review) error {
	return saveReview(s.db, r)
}

// ImportReviews upserts all reviews in one transaction; nothing is written
// if any of them is invalid.
func (s *Store) ImportReviews(reviews []Review) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if err := saveReview(tx, r); err != nil {
			tx.Rollback()
			return fmt.Errorf("import %q: %w", r.Slug, err)
		}
	}
	return tx.Commit()
}

// DeleteReview removes a review by slug.
func (s *Store) DeleteReview(slug string) error {
	_, err := s.db.Exec(`DELETE FROM reviews WHERE slug = ?`, slug)
	return err
}

// SetReviewImage points a review's image relation at locator.
func (s *Store) SetReviewImage(slug, locator string) error {
	res, err := s.db.Exec(`UPDATE reviews SET image_url = ? WHERE slug = ?`, locator, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ValidateReview checks the invariants the query engine relies on.
func ValidateReview(r Review) error {
	if strings.TrimSpace(r.Slug) == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidReview)
	}
	if _, ok := query.ParseTimestamp(r.PublishedAt); !ok {
		return fmt.Errorf("%w: publishedAt %q is not an ISO-8601 timestamp", ErrInvalidReview, r.PublishedAt)
	}
	return nil
}

// SaveImage records metadata for an uploaded image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// HasImage reports whether an image with filename is recorded.
func (s *Store) HasImage(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
