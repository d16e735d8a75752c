package query

import (
	"strings"
	"time"
)

// DefaultUploadPrefix is joined with a record's raw image locator.
const DefaultUploadPrefix = "uploads/"

// TimestampLayout is the canonical output form of publishedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// AttributeView is the client-facing form of one record.
type AttributeView struct {
	Attributes Attributes `json:"attributes"`
}

// Attributes carries only the requested fields; nil members are omitted.
type Attributes struct {
	ID          *int      `json:"id,omitempty"`
	Slug        *string   `json:"slug,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Subtitle    *string   `json:"subtitle,omitempty"`
	Body        *string   `json:"body,omitempty"`
	PublishedAt *string   `json:"publishedAt,omitempty"`
	Image       *Relation `json:"image,omitempty"`
}

// Relation is a populated single relation: {"data":{"attributes":{...}}}.
type Relation struct {
	Data RelationData `json:"data"`
}

type RelationData struct {
	Attributes MediaAttributes `json:"attributes"`
}

type MediaAttributes struct {
	URL *string `json:"url,omitempty"`
}

// Projector builds attribute views.
type Projector struct {
	UploadPrefix string
}

// Project copies the requested fields of r and expands the requested
// relations. Unknown fields, relations and relation fields are skipped.
func (p Projector) Project(r Record, fields []string, populate []Populate) AttributeView {
	var attrs Attributes
	for _, f := range fields {
		switch f {
		case FieldID:
			attrs.ID = ptr(r.ID)
		case FieldSlug:
			attrs.Slug = ptr(r.Slug)
		case FieldTitle:
			attrs.Title = ptr(r.Title)
		case FieldSubtitle:
			attrs.Subtitle = ptr(r.Subtitle)
		case FieldBody:
			attrs.Body = ptr(r.Body)
		case FieldPublishedAt:
			if ts, ok := CanonicalTimestamp(r.PublishedAt); ok {
				attrs.PublishedAt = ptr(ts)
			}
		}
	}
	for _, pop := range populate {
		if pop.Relation != RelationImage {
			continue
		}
		var media MediaAttributes
		for _, f := range pop.Fields {
			if f == FieldURL {
				media.URL = ptr(p.uploadPath(r.URL))
			}
		}
		attrs.Image = &Relation{Data: RelationData{Attributes: media}}
	}
	return AttributeView{Attributes: attrs}
}

func (p Projector) uploadPath(locator string) string {
	prefix := p.UploadPrefix
	if prefix == "" {
		prefix = DefaultUploadPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + strings.TrimPrefix(locator, "/")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 date-times with or without zone, and bare
// dates. Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// CanonicalTimestamp renders s as UTC ISO-8601 with milliseconds.
func CanonicalTimestamp(s string) (string, bool) {
	t, ok := ParseTimestamp(s)
	if !ok {
		return "", false
	}
	return t.Format(TimestampLayout), true
}

func ptr[T any](v T) *T { return &v }
