package query

// Record is one review as held by the record store. Values are never mutated
// once loaded.
type Record struct {
	ID          int    `json:"id" yaml:"id"`
	Slug        string `json:"slug" yaml:"slug"`
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle" yaml:"subtitle"`
	Body        string `json:"body" yaml:"body"`
	PublishedAt string `json:"publishedAt" yaml:"publishedAt"`
	URL         string `json:"url" yaml:"url"` // raw image locator
}

// Wire names of the record attributes.
const (
	FieldID          = "id"
	FieldSlug        = "slug"
	FieldTitle       = "title"
	FieldSubtitle    = "subtitle"
	FieldBody        = "body"
	FieldPublishedAt = "publishedAt"
	FieldURL         = "url"
)

// Field returns the value of the named attribute and whether the name is known.
// Textual attributes are returned as string, the identifier as int.
func (r Record) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return r.ID, true
	case FieldSlug:
		return r.Slug, true
	case FieldTitle:
		return r.Title, true
	case FieldSubtitle:
		return r.Subtitle, true
	case FieldBody:
		return r.Body, true
	case FieldPublishedAt:
		return r.PublishedAt, true
	case FieldURL:
		return r.URL, true
	}
	return nil, false
}
