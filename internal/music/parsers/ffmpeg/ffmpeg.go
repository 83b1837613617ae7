package ffmpeg

import (
	"context"
	"errors"
	"io"

	"guild-jukebox/internal/music/parsers"
)

// FFMPEGStreamer plays links ffmpeg can open on its own (files, radio streams).
type FFMPEGStreamer struct{}

func (s *FFMPEGStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return parsers.StartFFmpeg(ctx, parsers.FFmpegArgs(track.URL(), seekSec, true), nil)
}

func (s *FFMPEGStreamer) GetPipeStream(context.Context, *parsers.TrackParse, float64) (io.ReadCloser, func(), error) {
	return nil, nil, errors.New("pipe streaming not supported for now")
}

func (s *FFMPEGStreamer) SupportsPipe() bool {
	return false
}
