// /internal/sources/youtube/resolver.go
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

var (
	watchURLPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)
	ErrNoVideoMatch = errors.New("no video found for the given query")
)

// PageSearcher searches by scraping the public results page. It needs no API
// key but only sees what the first page lists and returns no titles.
type PageSearcher struct {
	BaseURL string
	Client  *http.Client
}

func NewPageSearcher(client *http.Client) *PageSearcher {
	return &PageSearcher{
		BaseURL: "https://www.youtube.com",
		Client:  client,
	}
}

func (r *PageSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Err: fmt.Errorf("YouTube search failed with status code %v", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	matches := watchURLPattern.FindAllStringSubmatch(string(body), -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			ids = append(ids, m[1])
		}
	}

	ids = removeDuplicates(ids)
	if len(ids) == 0 {
		return nil, ErrNoVideoMatch
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	results := make([]Result, len(ids))
	for i, id := range ids {
		results[i] = Result{VideoID: id}
	}
	return results, nil
}

func removeDuplicates(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	var result []string
	for _, u := range input {
		if _, exists := seen[u]; !exists {
			seen[u] = struct{}{}
			result = append(result, u)
		}
	}
	return result
}
