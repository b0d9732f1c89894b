// Package collab holds the bot's stateless collaborators: web search,
// barcode decoding and text-to-image rendering. Each is a narrow functional
// contract; failures map to domain.ErrCollaborator and surface to the user
// as "not available", never as a crash.
package collab

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	searchUA       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"
)

// WebSearcher queries the DuckDuckGo HTML endpoint and scrapes result links.
type WebSearcher struct {
	httpc    *http.Client
	endpoint string
}

// NewWebSearcher creates a searcher with a bounded request timeout.
func NewWebSearcher() *WebSearcher {
	return &WebSearcher{
		httpc:    &http.Client{Timeout: 15 * time.Second},
		endpoint: searchEndpoint,
	}
}

// Search returns up to limit result URLs for the query. An empty slice is a
// valid outcome (no results); errors wrap ErrCollaborator.
func (s *WebSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	u := s.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: search request: %v", domain.ErrCollaborator, err)
	}
	req.Header.Set("User-Agent", searchUA)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", domain.ErrCollaborator, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search: status %d", domain.ErrCollaborator, resp.StatusCode)
	}
	return extractResults(resp.Body, limit)
}

// extractResults walks the result page and collects hrefs of result anchors.
func extractResults(r io.Reader, limit int) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse results: %v", domain.ErrCollaborator, err)
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			if href := attr(n, "href"); href != "" {
				out = append(out, resolveRedirect(href))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> redirect links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
