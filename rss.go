package reviewcms

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewcms/query"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, reviews []query.AttributeView) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(reviews))
	for _, v := range reviews {
		attrs := v.Attributes
		pubDate := ""
		if t, err := time.Parse(query.TimestampLayout, deref(attrs.PublishedAt)); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := ReviewURL(base, deref(attrs.Slug))
		items = append(items, rssItem{
			Title:       deref(attrs.Title),
			Link:        link,
			Description: deref(attrs.Subtitle),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
