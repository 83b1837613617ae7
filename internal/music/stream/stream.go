package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"guild-jukebox/internal/music/parsers"
	"guild-jukebox/internal/music/parsers/ffmpeg"
	"guild-jukebox/internal/music/parsers/kkdai"
	"guild-jukebox/internal/music/parsers/ytdlp"
)

// DefaultRegistry maps parser names to streamers. httpClient carries the
// optional proxy for in-process YouTube extraction.
func DefaultRegistry(httpClient *http.Client) map[string]parsers.Streamer {
	kk := kkdai.New(httpClient)
	yt := ytdlp.New()
	return map[string]parsers.Streamer{
		"ytdlp-link":  yt,
		"ytdlp-pipe":  yt,
		"kkdai-link":  kk,
		"kkdai-pipe":  kk,
		"ffmpeg-link": &ffmpeg.FFMPEGStreamer{},
	}
}

func isPipeMode(parser string) bool {
	return parser == "ytdlp-pipe" || parser == "kkdai-pipe"
}

// Opener opens PCM streams through a parser registry.
type Opener struct {
	registry map[string]parsers.Streamer
}

func NewOpener(registry map[string]parsers.Streamer) *Opener {
	return &Opener{registry: registry}
}

// TrackStream is an open PCM stream. Close releases the reader and every
// helper process behind it.
type TrackStream struct {
	io.ReadCloser
	parser    string
	cleanup   func()
	closeOnce sync.Once
}

func (m *TrackStream) Parser() string {
	return m.parser
}

func (m *TrackStream) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.ReadCloser.Close()
		if m.cleanup != nil {
			m.cleanup()
		}
	})
	return err
}

func (o *Opener) Open(ctx context.Context, track *parsers.TrackParse, parser string, seekSec float64) (*TrackStream, error) {
	streamer, ok := o.registry[parser]
	if !ok {
		return nil, fmt.Errorf("streamer not found for parser: %v", parser)
	}

	var (
		r       io.ReadCloser
		cleanup func()
		err     error
	)
	if isPipeMode(parser) && streamer.SupportsPipe() {
		r, cleanup, err = streamer.GetPipeStream(ctx, track, seekSec)
	} else {
		r, cleanup, err = streamer.GetLinkStream(ctx, track, seekSec)
	}
	if err != nil {
		return nil, err
	}

	track.CurrentParser = parser
	return &TrackStream{ReadCloser: r, parser: parser, cleanup: cleanup}, nil
}
