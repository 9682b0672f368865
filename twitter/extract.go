package twitter

import (
	"errors"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoHandle reports that no handle could be recognized in the page
// markup. The caller cannot tell a renamed account apart from a layout
// change, so both surface as an ambiguous page.
var ErrNoHandle = errors.New("twitter: no handle found in page")

// page titles look like "Alice Example (@alice) / X"
var reTitleHandle = regexp.MustCompile(`\(@([A-Za-z0-9_]{1,15})\)`)

// Extractor pulls the current handle out of a profile page body. The
// scrape pattern is brittle against upstream markup changes, so it stays
// behind this narrow seam.
type Extractor interface {
	Extract(body io.Reader) (string, error)
}

// IntentPageExtractor reads the x.com user intent page. It prefers the
// redirect anchor carrying a screen_name query param and falls back to
// the page title.
type IntentPageExtractor struct{}

func NewIntentPageExtractor() *IntentPageExtractor {
	return &IntentPageExtractor{}
}

func (e *IntentPageExtractor) Extract(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	var handle string
	doc.Find(`a[href*="screen_name="]`).EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return true
		}
		if name := parsed.Query().Get("screen_name"); name != "" {
			handle = name
			return false
		}
		return true
	})
	if handle != "" {
		return handle, nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if match := reTitleHandle.FindStringSubmatch(title); match != nil {
		return match[1], nil
	}

	return "", ErrNoHandle
}
