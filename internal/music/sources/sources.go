package sources

const (
	SourceYouTube = "youtube"
	SourceDirect  = "direct"
)

// MaxResults bounds how many tracks a single resolution may return.
const MaxResults = 50

// TrackInfo is a resolvable locator for one playable track. Values are shared
// by pointer between the queue and the transport and must not be modified
// after the resolver returns them.
type TrackInfo struct {
	URL              string
	Title            string
	SourceName       string
	AvailableParsers []string
}

// Label is the best human-readable name for the track.
func (t *TrackInfo) Label() string {
	switch {
	case t == nil:
		return ""
	case t.Title != "":
		return t.Title
	default:
		return t.URL
	}
}
