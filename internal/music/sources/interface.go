package sources

import "context"

type Source interface {
	// Match checks if this source can handle the given input as a link
	Match(input string) bool

	// Search turns a free-text query into at most limit tracks
	Search(ctx context.Context, query string, limit int) ([]*TrackInfo, error)

	// Link turns a URL into the track it points to
	Link(input string) (*TrackInfo, error)

	SourceName() string

	// AvailableParsers returns the parsers able to stream this source, preferred first
	AvailableParsers() []string
}
