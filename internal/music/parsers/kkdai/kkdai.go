package kkdai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	youtube "github.com/kkdai/youtube/v2"

	"guild-jukebox/internal/music/parsers"
)

// KKDAIStreamer extracts YouTube media in-process with kkdai/youtube and
// hands it to ffmpeg, either as a link or through stdin.
type KKDAIStreamer struct {
	Client *youtube.Client
}

// New uses httpClient for every YouTube request (proxy support lives there).
func New(httpClient *http.Client) *KKDAIStreamer {
	return &KKDAIStreamer{Client: &youtube.Client{HTTPClient: httpClient}}
}

func (s *KKDAIStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, track)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] %w", err)
	}

	link, err := s.Client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] get stream URL error: %w", err)
	}

	return parsers.StartFFmpeg(ctx, parsers.FFmpegArgs(link, seekSec, true), nil)
}

func (s *KKDAIStreamer) GetPipeStream(ctx context.Context, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, track)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] %w", err)
	}

	stream, _, err := s.Client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] get stream error: %w", err)
	}

	reader, cleanup, err := parsers.StartFFmpeg(ctx, parsers.FFmpegArgs("", seekSec, false), stream)
	if err != nil {
		stream.Close()
		return nil, nil, err
	}

	return reader, func() {
		cleanup()
		stream.Close()
	}, nil
}

func (s *KKDAIStreamer) SupportsPipe() bool {
	return true
}

func (s *KKDAIStreamer) lookup(ctx context.Context, track *parsers.TrackParse) (*youtube.Video, *youtube.Format, error) {
	videoID, err := extractYouTubeID(track.URL())
	if err != nil {
		return nil, nil, err
	}

	video, err := s.Client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	track.Duration = video.Duration
	if track.Title == "" {
		track.Title = video.Title
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}
	return video, &formats[0], nil
}

func extractYouTubeID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid YouTube URL format: %w", err)
	}

	var id string
	switch u.Hostname() {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "www.youtube.com", "music.youtube.com", "m.youtube.com":
		id = u.Query().Get("v")
	default:
		return "", errors.New("unsupported URL format")
	}

	if id == "" {
		return "", errors.New("invalid YouTube URL format")
	}
	return id, nil
}
