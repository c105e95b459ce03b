package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
)

const (
	// BaseURL of the English encyclopedia
	BaseURL = "https://en.wikipedia.org"

	apiPath = "/w/api.php"

	// ThumbnailSize is the requested thumbnail width in pixels
	ThumbnailSize = 500
)

// SearchHit is one full-text search result
type SearchHit struct {
	Title  string `json:"title"`
	PageID int    `json:"pageid"`
}

// Client queries the MediaWiki action API
type Client struct {
	baseURL string
	fetcher Fetcher
}

// NewClient creates a client for baseURL using fetcher for transport
func NewClient(baseURL string, fetcher Fetcher) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

type searchResponse struct {
	Query struct {
		Search []SearchHit `json:"search"`
	} `json:"query"`
}

type page struct {
	PageID    int     `json:"pageid"`
	Title     string  `json:"title"`
	Missing   *string `json:"missing,omitempty"`
	Extract   string  `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnail"`
}

type pagesResponse struct {
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type parseResponse struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			HTML string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

type apiError struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Search runs a full-text search and returns the hits in rank order
func (c *Client) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	return resp.Query.Search, nil
}

// Thumbnail returns the page image URL for title, or "" when the page has none
func (c *Client) Thumbnail(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "pageimages")
	params.Set("pithumbsize", fmt.Sprint(ThumbnailSize))

	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("fetching page image for %q: %w", title, err)
	}

	p, ok := firstPage(resp.Query.Pages)
	if !ok || p.Thumbnail == nil {
		return "", nil
	}
	return p.Thumbnail.Source, nil
}

// Extract returns the plain-text introduction of title
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")

	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("fetching extract for %q: %w", title, err)
	}

	p, ok := firstPage(resp.Query.Pages)
	if !ok {
		return "", nil
	}
	return p.Extract, nil
}

// LeadSection returns the rendered HTML of the first section of title,
// which holds the infobox
func (c *Client) LeadSection(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("section", "0")

	var resp parseResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("fetching lead section for %q: %w", title, err)
	}
	return resp.Parse.Text.HTML, nil
}

// get issues one API request and decodes its JSON body into out
func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("origin", "*")
	endpoint := c.baseURL + apiPath + "?" + params.Encode()

	body, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "<") {
		return fmt.Errorf("API returned HTML error page: %s", trimmed[:min(len(trimmed), 200)])
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return fmt.Errorf("API error %s: %s", apiErr.Error.Code, apiErr.Error.Info)
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Printf("[wiki-client] ❌ undecodable response from %s", endpoint)
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// firstPage picks the lowest-keyed page of a single-title query.
// Missing pages carry negative ids and no content.
func firstPage(pages map[string]page) (page, bool) {
	if len(pages) == 0 {
		return page{}, false
	}
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := pages[keys[0]]
	if p.Missing != nil {
		return page{}, false
	}
	return p, true
}
