package reviewcms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRecords reads a reviews file. Files ending in .yaml or .yml are YAML;
// everything else is read as a JSON array in the reviews.json shape.
func LoadRecords(path string) ([]Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reviewcms: read records: %w", err)
	}
	return DecodeRecords(data, filepath.Ext(path))
}

// DecodeRecords decodes and validates a list of reviews. ext selects the
// format (".yaml", ".yml" or JSON otherwise).
func DecodeRecords(data []byte, ext string) ([]Review, error) {
	var reviews []Review
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &reviews); err != nil {
			return nil, fmt.Errorf("reviewcms: decode yaml records: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&reviews); err != nil {
			return nil, fmt.Errorf("reviewcms: decode json records: %w", err)
		}
	}
	seen := make(map[string]struct{}, len(reviews))
	for i, r := range reviews {
		if err := ValidateReview(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[r.Slug]; dup {
			return nil, fmt.Errorf("record %d: %w: duplicate slug %q", i, ErrInvalidReview, r.Slug)
		}
		seen[r.Slug] = struct{}{}
	}
	return reviews, nil
}

// SeedIfEmpty imports the records at path when the store holds no reviews.
// It reports how many records were imported.
func SeedIfEmpty(s *Store, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := s.CountReviews()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	reviews, err := LoadRecords(path)
	if err != nil {
		return 0, err
	}
	if err := s.ImportReviews(reviews); err != nil {
		return 0, err
	}
	return len(reviews), nil
}
