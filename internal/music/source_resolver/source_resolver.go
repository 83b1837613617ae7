package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/music/sources"
	"guild-jukebox/internal/music/sources/youtube"
	"guild-jukebox/pkg/retrylimit"
)

// Reason classifies a resolution failure.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonQuota       Reason = "quota"
	ReasonNoResults   Reason = "no_results"
)

// ResolutionError is returned for every failed resolution.
type ResolutionError struct {
	Query  string
	Reason Reason
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %q: %s", e.Query, e.Reason)
	}
	return fmt.Sprintf("resolve %q: %s: %v", e.Query, e.Reason, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// IsNoResults reports whether err is a resolution that found nothing.
func IsNoResults(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Reason == ReasonNoResults
}

type SourceResolver struct {
	search  sources.Source   // free-text queries
	linkers []sources.Source // URL handlers, most specific first
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
}

// New builds a resolver that sends text queries to search and URLs to the
// first linker that matches. limiter may be nil.
func New(search sources.Source, limiter *retrylimit.AdaptiveLimiter, linkers ...sources.Source) *SourceResolver {
	return &SourceResolver{
		search:  search,
		linkers: linkers,
		limiter: limiter,
		retry:   retrylimit.DefaultRetryConfig(),
	}
}

// Resolve turns a query into at most sources.MaxResults tracks in upstream order.
func (r *SourceResolver) Resolve(ctx context.Context, query string) ([]*sources.TrackInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ResolutionError{Query: query, Reason: ReasonNoResults, Err: errors.New("empty query")}
	}

	if isURL(query) {
		return r.resolveLink(query)
	}

	var tracks []*sources.TrackInfo
	err := retrylimit.WithRetryConfig(ctx, func() error {
		var err error
		tracks, err = r.search.Search(ctx, query, sources.MaxResults)
		if errors.Is(err, youtube.ErrQuotaExceeded) || errors.Is(err, youtube.ErrNoVideoMatch) {
			return retrylimit.Fatal(err)
		}
		return err
	}, r.limiter, r.retry)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("[Resolver] Search failed")
		return nil, classify(query, err)
	}

	if len(tracks) == 0 {
		return nil, &ResolutionError{Query: query, Reason: ReasonNoResults}
	}
	if len(tracks) > sources.MaxResults {
		tracks = tracks[:sources.MaxResults]
	}
	return tracks, nil
}

func (r *SourceResolver) resolveLink(link string) ([]*sources.TrackInfo, error) {
	for _, src := range r.linkers {
		if !src.Match(link) {
			continue
		}
		track, err := src.Link(link)
		if err != nil {
			return nil, &ResolutionError{Query: link, Reason: ReasonUnavailable, Err: err}
		}
		return []*sources.TrackInfo{track}, nil
	}
	return nil, &ResolutionError{Query: link, Reason: ReasonNoResults, Err: errors.New("no source accepts this link")}
}

func classify(query string, err error) error {
	switch {
	case errors.Is(err, youtube.ErrQuotaExceeded):
		return &ResolutionError{Query: query, Reason: ReasonQuota, Err: err}
	case errors.Is(err, youtube.ErrNoVideoMatch):
		return &ResolutionError{Query: query, Reason: ReasonNoResults, Err: err}
	default:
		return &ResolutionError{Query: query, Reason: ReasonUnavailable, Err: err}
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
