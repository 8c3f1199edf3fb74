package claims

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxPageBytes = 2 << 20

// PageTitleResolver resolves a URL to its page title and description.
type PageTitleResolver struct {
	client    *http.Client
	userAgent string
}

// NewPageTitleResolver creates a resolver using client, or http.DefaultClient when nil.
func NewPageTitleResolver(client *http.Client, userAgent string) *PageTitleResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &PageTitleResolver{client: client, userAgent: userAgent}
}

// Resolve fetches rawURL and returns "title. description".
func (r *PageTitleResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}

	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if desc == "" {
		desc, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{title, desc} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.TrimSuffix(p, "."))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("page has no title or description")
	}
	return strings.Join(parts, ". "), nil
}
