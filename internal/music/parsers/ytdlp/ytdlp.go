package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"guild-jukebox/internal/music/parsers"
)

// YTDLPStreamer shells out to yt-dlp for extraction.
type YTDLPStreamer struct {
	Binary string
}

func New() *YTDLPStreamer {
	return &YTDLPStreamer{Binary: "yt-dlp"}
}

func (s *YTDLPStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	info, err := s.probe(ctx, track)
	if err != nil {
		return nil, nil, err
	}

	link := info.streamURL()
	if link == "" {
		return nil, nil, errors.New("empty URL returned from yt-dlp")
	}

	return parsers.StartFFmpeg(ctx, parsers.FFmpegArgs(link, seekSec, true), nil)
}

func (s *YTDLPStreamer) GetPipeStream(ctx context.Context, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	if _, err := s.probe(ctx, track); err != nil {
		return nil, nil, err
	}

	ytdlp := exec.CommandContext(ctx, s.Binary, "-o", "-", "-f", "bestaudio", track.URL())
	ffmpegIn, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	if err := ytdlp.Start(); err != nil {
		return nil, nil, fmt.Errorf("yt-dlp start error: %w", err)
	}

	reader, cleanup, err := parsers.StartFFmpeg(ctx, parsers.FFmpegArgs("", seekSec, false), ffmpegIn)
	if err != nil {
		_ = ytdlp.Process.Kill()
		_ = ytdlp.Wait()
		return nil, nil, err
	}

	return reader, func() {
		cleanup()
		_ = ytdlp.Process.Kill()
		_ = ytdlp.Wait()
	}, nil
}

func (s *YTDLPStreamer) SupportsPipe() bool {
	return true
}

type fragment struct {
	Duration float64 `json:"duration"`
}

type format struct {
	URL       string     `json:"url"`
	Fragments []fragment `json:"fragments,omitempty"`
}

type ytdlpInfo struct {
	Title    string   `json:"title"`
	Duration float64  `json:"duration"`
	Formats  []format `json:"formats"`
	URL      string   `json:"url"`
}

func (i *ytdlpInfo) streamURL() string {
	if link := strings.TrimSpace(i.URL); link != "" {
		return link
	}
	if len(i.Formats) > 0 {
		return strings.TrimSpace(i.Formats[0].URL)
	}
	return ""
}

func (s *YTDLPStreamer) probe(ctx context.Context, track *parsers.TrackParse) (*ytdlpInfo, error) {
	output, err := exec.CommandContext(ctx, s.Binary, "-j", "-f", "bestaudio", track.URL()).Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp json error: %w", err)
	}

	info, err := parseInfo(output)
	if err != nil {
		return nil, err
	}

	track.Duration = time.Duration(info.Duration * float64(time.Second))
	if track.Title == "" {
		track.Title = info.Title
	}
	return info, nil
}

func parseInfo(output []byte) (*ytdlpInfo, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	// live and fragmented media report duration only per fragment
	if info.Duration == 0 && len(info.Formats) > 0 && len(info.Formats[0].Fragments) > 0 {
		info.Duration = info.Formats[0].Fragments[0].Duration
	}
	return &info, nil
}
