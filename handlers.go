package reviewcms

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/reviewcms/query"
)

// Search box limits, matching what the review site has always requested.
const (
	searchMinLength = 2
	searchPageSize  = 5
)

func (a *App) handleReviews(c echo.Context) error {
	q, err := query.Parse(c.Request().URL.RawQuery)
	if err != nil {
		a.countQuery("reviews", "bad_request")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	env, err := a.runQuery(a.Engine, "reviews", q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, env)
}

func (a *App) handleSearch(c echo.Context) error {
	term := c.QueryParam("query")
	results := []SearchResult{}
	if utf8.RuneCountInString(term) < searchMinLength {
		return c.JSON(http.StatusOK, results)
	}
	env, err := a.runQuery(a.Engine, "search", query.Query{
		Filters:    query.FilterSpec{}.Where(query.FieldTitle, query.OpContainsI, term),
		Fields:     []string{query.FieldSlug, query.FieldTitle},
		Sort:       []string{query.FieldTitle},
		Pagination: &query.Pagination{PageSize: searchPageSize},
	})
	if err != nil {
		return err
	}
	for _, v := range env.Data {
		results = append(results, SearchResult{
			Slug:  deref(v.Attributes.Slug),
			Title: deref(v.Attributes.Title),
		})
	}
	return c.JSON(http.StatusOK, results)
}

func (a *App) handleHealth(c echo.Context) error {
	records, err := a.Cache.Records()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"reviews": len(records),
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	env, err := a.latestReviews("sitemap")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, env.Data)
}

func (a *App) handleFeed(c echo.Context) error {
	env, err := a.latestReviews("feed")
	if err != nil {
		return err
	}
	return a.renderRSS(c, env.Data)
}

// latestReviews lists every review newest first for the feeds.
func (a *App) latestReviews(endpoint string) (query.Envelope, error) {
	return a.runQuery(a.feedEngine, endpoint, query.Query{
		Fields: []string{query.FieldSlug, query.FieldTitle, query.FieldSubtitle, query.FieldPublishedAt},
		Sort:   []string{query.FieldPublishedAt + ":desc", query.FieldID + ":desc"},
	})
}

// runQuery evaluates q over the current snapshot with engine.
func (a *App) runQuery(engine *query.Engine, endpoint string, q query.Query) (query.Envelope, error) {
	records, err := a.Cache.Records()
	if err != nil {
		a.countQuery(endpoint, "error")
		return query.Envelope{}, err
	}
	env, err := engine.Process(records, q)
	if err != nil {
		if errors.Is(err, query.ErrTypeMismatch) {
			a.countQuery(endpoint, "bad_request")
			return query.Envelope{}, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
		}
		a.countQuery(endpoint, "error")
		return query.Envelope{}, err
	}
	a.countQuery(endpoint, "ok")
	return env, nil
}

func (a *App) countQuery(endpoint, outcome string) {
	if a.queries != nil {
		a.queries.WithLabelValues(endpoint, outcome).Inc()
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
		)
		message = http.StatusText(code)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = writeError(c, code, message)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
