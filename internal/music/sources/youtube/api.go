package youtube

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// quota reasons reported by the Data API in a 403 body
var quotaReasons = map[string]bool{
	"quotaExceeded":      true,
	"dailyLimitExceeded": true,
}

// APISearcher searches through the YouTube Data API v3.
type APISearcher struct {
	svc    *yt.Service
	apiKey string
}

// NewAPISearcher builds a Data API client on top of client. Extra options are
// appended last, so tests can point the service at a local endpoint.
func NewAPISearcher(ctx context.Context, apiKey string, client *http.Client, opts ...option.ClientOption) (*APISearcher, error) {
	if apiKey == "" {
		return nil, errors.New("YouTube API key is empty")
	}

	// WithHTTPClient disables option-based auth, the key travels as a query parameter instead
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &APISearcher{svc: svc, apiKey: apiKey}, nil
}

func (a *APISearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	resp, err := a.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do(googleapi.QueryParameter("key", a.apiKey))
	if err != nil {
		return nil, classifyAPIError(err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		var title string
		if item.Snippet != nil {
			title = html.UnescapeString(item.Snippet.Title)
		}
		results = append(results, Result{VideoID: item.Id.VideoId, Title: title})
	}

	if len(results) == 0 {
		return nil, ErrNoVideoMatch
	}
	return results, nil
}

func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	statusErr := &StatusError{Code: gerr.Code, Err: err}
	for _, item := range gerr.Errors {
		if quotaReasons[item.Reason] {
			statusErr.Quota = true
			break
		}
	}
	return statusErr
}
