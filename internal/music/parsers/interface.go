package parsers

import (
	"context"
	"io"
)

// Streamer turns a track into raw PCM (s16le, 48kHz, stereo). The returned
// cleanup stops every helper process and must be called once the reader is
// no longer used.
type Streamer interface {
	GetLinkStream(ctx context.Context, track *TrackParse, seekSec float64) (io.ReadCloser, func(), error)
	GetPipeStream(ctx context.Context, track *TrackParse, seekSec float64) (io.ReadCloser, func(), error)
	SupportsPipe() bool
}
