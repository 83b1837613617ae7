package parsers

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"guild-jukebox/internal/music/sources"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// TrackParse is the per-playback view of a track. Parsers fill in what they
// learn about the media (duration, title) while opening it.
type TrackParse struct {
	Info          *sources.TrackInfo
	Title         string
	Duration      time.Duration
	CurrentParser string
}

func NewTrackParse(info *sources.TrackInfo) *TrackParse {
	return &TrackParse{Info: info, Title: info.Title}
}

func (t *TrackParse) URL() string {
	return t.Info.URL
}

// FFmpegArgs builds the decode command line. An empty input reads from stdin.
func FFmpegArgs(input string, seekSec float64, reconnect bool) []string {
	args := []string{}
	if seekSec > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", seekSec))
	}
	if input == "" {
		input = "pipe:0"
	} else if reconnect {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

// StartFFmpeg runs ffmpeg with args, optionally fed from stdin, and returns
// its PCM output.
func StartFFmpeg(ctx context.Context, args []string, stdin io.Reader) (io.ReadCloser, func(), error) {
	ffmpeg := exec.CommandContext(ctx, "ffmpeg", args...)
	ffmpeg.Stdin = stdin

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		_ = ffmpeg.Process.Kill()
		_ = ffmpeg.Wait()
	}

	return reader, cleanup, nil
}
