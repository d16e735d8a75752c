// Package client reads reviews from a reviewcms content API the way the
// review site does: bracketed collection queries, markdown bodies rendered to
// HTML, and responses cached under a tag until revalidated.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/eringen/reviewcms/query"
)

// CacheTagReviews tags every response fetched from the reviews collection.
const CacheTagReviews = "reviews"

// ErrNotFound is returned by GetReview when no review has the slug.
var ErrNotFound = errors.New("client: review not found")

// Review is a review as listed on the site.
type Review struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Image    string `json:"image"`
}

// FullReview is a review with its body rendered to HTML.
type FullReview struct {
	Review
	Body string `json:"body"`
}

// PaginatedReviews is one page of the review listing.
type PaginatedReviews struct {
	PageCount int      `json:"pageCount"`
	Reviews   []Review `json:"reviews"`
}

// SearchableReview is what the search box needs.
type SearchableReview struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Client talks to one content API.
type Client struct {
	base     *url.URL
	http     *http.Client
	logger   *zap.Logger
	markdown goldmark.Markdown
	cache    *responseCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the content API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:     base,
		http:     http.DefaultClient,
		logger:   zap.NewNop(),
		markdown: goldmark.New(),
		cache:    newResponseCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetReview fetches one review by slug with its body rendered to HTML.
func (c *Client) GetReview(ctx context.Context, slug string) (FullReview, error) {
	env, err := c.fetchReviews(ctx, query.Query{
		Filters:  query.FilterSpec{}.Where(query.FieldSlug, query.OpEq, slug),
		Fields:   []string{query.FieldSlug, query.FieldTitle, query.FieldSubtitle, query.FieldPublishedAt, query.FieldBody},
		Populate: []query.Populate{{Relation: query.RelationImage, Fields: []string{query.FieldURL}}},
		Pagination: &query.Pagination{
			PageSize: 1,
		},
	})
	if err != nil {
		return FullReview{}, err
	}
	if len(env.Data) == 0 {
		return FullReview{}, ErrNotFound
	}
	item := env.Data[0].Attributes
	var body bytes.Buffer
	if err := c.markdown.Convert([]byte(deref(item.Body)), &body); err != nil {
		return FullReview{}, fmt.Errorf("client: render %q: %w", slug, err)
	}
	return FullReview{Review: c.toReview(item), Body: body.String()}, nil
}

// GetReviews fetches one page of reviews sorted by publishedAt:desc. A zero
// page means the first page.
func (c *Client) GetReviews(ctx context.Context, pageSize, page int) (PaginatedReviews, error) {
	env, err := c.fetchReviews(ctx, query.Query{
		Fields:     []string{query.FieldSlug, query.FieldTitle, query.FieldSubtitle, query.FieldPublishedAt},
		Populate:   []query.Populate{{Relation: query.RelationImage, Fields: []string{query.FieldURL}}},
		Sort:       []string{query.FieldPublishedAt + ":desc"},
		Pagination: &query.Pagination{PageSize: pageSize, Page: page},
	})
	if err != nil {
		return PaginatedReviews{}, err
	}
	reviews := make([]Review, len(env.Data))
	for i, v := range env.Data {
		reviews[i] = c.toReview(v.Attributes)
	}
	return PaginatedReviews{PageCount: env.Meta.Pagination.PageCount, Reviews: reviews}, nil
}

// GetSlugs lists up to a hundred slugs sorted by publishedAt:desc.
func (c *Client) GetSlugs(ctx context.Context) ([]string, error) {
	env, err := c.fetchReviews(ctx, query.Query{
		Fields:     []string{query.FieldSlug},
		Sort:       []string{query.FieldPublishedAt + ":desc"},
		Pagination: &query.Pagination{PageSize: 100},
	})
	if err != nil {
		return nil, err
	}
	slugs := make([]string, len(env.Data))
	for i, v := range env.Data {
		slugs[i] = deref(v.Attributes.Slug)
	}
	return slugs, nil
}

// SearchReviews returns up to five reviews whose title contains q, ignoring
// case, ordered by title.
func (c *Client) SearchReviews(ctx context.Context, q string) ([]SearchableReview, error) {
	env, err := c.fetchReviews(ctx, query.Query{
		Filters:    query.FilterSpec{}.Where(query.FieldTitle, query.OpContainsI, q),
		Fields:     []string{query.FieldSlug, query.FieldTitle},
		Sort:       []string{query.FieldTitle},
		Pagination: &query.Pagination{PageSize: 5},
	})
	if err != nil {
		return nil, err
	}
	results := make([]SearchableReview, len(env.Data))
	for i, v := range env.Data {
		results[i] = SearchableReview{Slug: deref(v.Attributes.Slug), Title: deref(v.Attributes.Title)}
	}
	return results, nil
}

// Revalidate drops every cached response carrying tag.
func (c *Client) Revalidate(tag string) {
	n := c.cache.revalidate(tag)
	c.logger.Debug("revalidated", zap.String("tag", tag), zap.Int("responses", n))
}

func (c *Client) fetchReviews(ctx context.Context, q query.Query) (query.Envelope, error) {
	ref := &url.URL{Path: "api/reviews", RawQuery: q.Encode()}
	target := c.base.ResolveReference(ref).String()

	body, ok := c.cache.get(target)
	if !ok {
		var err error
		body, err = c.get(ctx, target)
		if err != nil {
			return query.Envelope{}, err
		}
		c.cache.put(target, body, CacheTagReviews)
	}

	var env query.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return query.Envelope{}, fmt.Errorf("client: decode %s: %w", target, err)
	}
	return env, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("content api error", zap.Int("status", resp.StatusCode), zap.String("url", target))
		return nil, fmt.Errorf("client: CMS returned %d for %s", resp.StatusCode, target)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read %s: %w", target, err)
	}
	c.logger.Debug("fetched", zap.String("url", target), zap.Int("bytes", len(body)))
	return body, nil
}

func (c *Client) toReview(attrs query.Attributes) Review {
	r := Review{
		Slug:     deref(attrs.Slug),
		Title:    deref(attrs.Title),
		Subtitle: deref(attrs.Subtitle),
		Date:     datePart(deref(attrs.PublishedAt)),
	}
	if attrs.Image != nil && attrs.Image.Data.Attributes.URL != nil {
		r.Image = c.resolve(*attrs.Image.Data.Attributes.URL)
	}
	return r
}

func (c *Client) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.base.ResolveReference(u).String()
}

func datePart(ts string) string {
	if len(ts) < len("yyyy-mm-dd") {
		return ts
	}
	return ts[:len("yyyy-mm-dd")]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
