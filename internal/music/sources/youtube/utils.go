package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeRegex = regexp.MustCompile(`(?:https?:\/\/)?(?:www\.|music\.|m\.)?(youtube\.com|youtu\.be)\/\S+`)
	videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}

// WatchURL builds the canonical watch link for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// videoID returns the id of the single video a link points to, or "" for
// channels, playlists, searches and anything that is not YouTube.
func videoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	var id string
	switch strings.TrimPrefix(u.Hostname(), "www.") {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
		}
	}

	if !videoIDRegex.MatchString(id) {
		return ""
	}
	return id
}
