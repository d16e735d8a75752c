package query

import (
	"slices"

	"golang.org/x/text/language"
)

// Envelope is the response body of a collection query.
type Envelope struct {
	Data []AttributeView `json:"data"`
	Meta Meta            `json:"meta"`
}

type Meta struct {
	Pagination PageMeta `json:"pagination"`
}

type PageMeta struct {
	PageCount int `json:"pageCount"`
}

// Engine runs queries over record snapshots. The zero value is not usable;
// construct one with New.
type Engine struct {
	composition     Composition
	mismatch        MismatchPolicy
	directionalText bool
	collation       language.Tag
	projector       Projector
}

// Option configures an Engine.
type Option func(*Engine)

// WithComposition selects how filter conditions combine.
func WithComposition(c Composition) Option {
	return func(e *Engine) { e.composition = c }
}

// WithMismatchPolicy selects what a non-text $containsi operand does.
func WithMismatchPolicy(p MismatchPolicy) Option {
	return func(e *Engine) { e.mismatch = p }
}

// WithDirectionalText applies sort direction to text keys as well.
func WithDirectionalText(on bool) Option {
	return func(e *Engine) { e.directionalText = on }
}

// WithCollation sets the language used to order text.
func WithCollation(tag language.Tag) Option {
	return func(e *Engine) { e.collation = tag }
}

// WithUploadPrefix sets the prefix joined with image locators.
func WithUploadPrefix(prefix string) Option {
	return func(e *Engine) { e.projector.UploadPrefix = prefix }
}

// New returns an Engine with the default policies: any-condition filters,
// non-text operands never match, text sorts ascending regardless of direction.
func New(opts ...Option) *Engine {
	e := &Engine{
		composition: AnyCondition,
		mismatch:    MismatchNoMatch,
		collation:   language.English,
		projector:   Projector{UploadPrefix: DefaultUploadPrefix},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process filters, sorts, projects and paginates records for q. The records
// slice is read but never modified. An error is returned only when the
// mismatch policy is MismatchFail and a condition cannot be evaluated; no
// partial envelope is produced in that case.
func (e *Engine) Process(records []Record, q Query) (Envelope, error) {
	pred := Compile(q.Filters, e.composition, e.mismatch)
	selected := make([]Record, 0, len(records))
	for _, r := range records {
		ok, err := pred.Match(r)
		if err != nil {
			return Envelope{}, err
		}
		if ok {
			selected = append(selected, r)
		}
	}

	if len(q.Sort) > 0 {
		cmp := NewComparator(q.Sort, e.collation, e.directionalText)
		slices.SortStableFunc(selected, cmp.Compare)
	}

	views := make([]AttributeView, len(selected))
	for i, r := range selected {
		views[i] = e.projector.Project(r, q.Fields, q.Populate)
	}

	page, pageCount := Paginate(views, q.Pagination)
	if page == nil {
		page = []AttributeView{}
	}
	return Envelope{
		Data: page,
		Meta: Meta{Pagination: PageMeta{PageCount: pageCount}},
	}, nil
}
