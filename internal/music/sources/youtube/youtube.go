package youtube

import (
	"context"
	"errors"

	"guild-jukebox/internal/music/sources"
)

// Result is one search hit before it becomes a track.
type Result struct {
	VideoID string
	Title   string
}

// Searcher turns a free-text query into ordered search hits.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

type YouTubeSource struct {
	searcher Searcher
}

func New(searcher Searcher) *YouTubeSource {
	return &YouTubeSource{searcher: searcher}
}

func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) Link(input string) (*sources.TrackInfo, error) {
	id := videoID(input)
	if id == "" {
		return nil, errors.New("invalid YouTube URL format")
	}
	return y.track(WatchURL(id), ""), nil
}

func (y *YouTubeSource) Search(ctx context.Context, query string, limit int) ([]*sources.TrackInfo, error) {
	if limit <= 0 || limit > sources.MaxResults {
		limit = sources.MaxResults
	}

	results, err := y.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}

	tracks := make([]*sources.TrackInfo, 0, len(results))
	for _, r := range results {
		tracks = append(tracks, y.track(WatchURL(r.VideoID), r.Title))
	}
	return tracks, nil
}

func (y *YouTubeSource) track(url, title string) *sources.TrackInfo {
	return &sources.TrackInfo{
		URL:              url,
		Title:            title,
		SourceName:       sources.SourceYouTube,
		AvailableParsers: y.AvailableParsers(),
	}
}

func (y *YouTubeSource) SourceName() string {
	return sources.SourceYouTube
}

func (y *YouTubeSource) AvailableParsers() []string {
	return []string{"kkdai-link", "kkdai-pipe", "ytdlp-link", "ytdlp-pipe"}
}
