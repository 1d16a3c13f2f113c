// Package search scrapes HTML search result pages with goquery.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// DuckDuckGo HTML endpoint defaults. Endpoint must contain one %s for the
// escaped query.
const (
	DefaultEndpoint        = "https://html.duckduckgo.com/html/?q=%s"
	DefaultResultSelector  = ".result"
	DefaultTitleSelector   = ".result__a"
	DefaultSnippetSelector = ".result__snippet"
	DefaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Scraper implements ports.SearchEngine over a configurable results page.
type Scraper struct {
	client   *http.Client
	settings domain.SearchSettings
}

// NewScraper applies defaults to empty settings.
func NewScraper(client *http.Client, settings domain.SearchSettings) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	if settings.Endpoint == "" {
		settings.Endpoint = DefaultEndpoint
	}
	if settings.ResultSelector == "" {
		settings.ResultSelector = DefaultResultSelector
	}
	if settings.TitleSelector == "" {
		settings.TitleSelector = DefaultTitleSelector
	}
	if settings.SnippetSelector == "" {
		settings.SnippetSelector = DefaultSnippetSelector
	}
	if settings.UserAgent == "" {
		settings.UserAgent = DefaultUserAgent
	}
	if settings.MaxResults <= 0 {
		settings.MaxResults = domain.DefaultSearchMaxResults
	}
	return &Scraper{client: client, settings: settings}
}

// Search fetches the results page for query and extracts up to MaxResults hits.
func (s *Scraper) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	target := s.searchURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.settings.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, _ := url.Parse(target)
	var results []domain.SearchResult
	doc.Find(s.settings.ResultSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(s.settings.TitleSelector).First()
		title := cleanText(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return true
		}
		results = append(results, domain.SearchResult{
			Title:   title,
			URL:     resolveLink(base, href),
			Snippet: cleanText(sel.Find(s.settings.SnippetSelector).First().Text()),
		})
		return len(results) < s.settings.MaxResults
	})

	return results, nil
}

func (s *Scraper) searchURL(query string) string {
	escaped := url.QueryEscape(strings.TrimSpace(query))
	if strings.Contains(s.settings.Endpoint, "%s") {
		return fmt.Sprintf(s.settings.Endpoint, escaped)
	}
	return s.settings.Endpoint + escaped
}

// resolveLink makes href absolute and unwraps DuckDuckGo's "uddg" redirect.
func resolveLink(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return u.String()
}

func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var _ ports.SearchEngine = (*Scraper)(nil)
