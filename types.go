package reviewcms

import "github.com/eringen/reviewcms/query"

// Review is the stored form of a game review. It is the record type the
// query engine evaluates.
type Review = query.Record

// Image is an uploaded cover image stored under the uploads directory.
type Image struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}

// SearchResult is one entry returned to the search box.
type SearchResult struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
