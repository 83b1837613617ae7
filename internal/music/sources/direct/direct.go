// Package direct plays arbitrary audio links (files, internet radio) through ffmpeg.
package direct

import (
	"context"
	"errors"
	"strings"
	"time"

	"guild-jukebox/internal/music/sources"
)

var ErrSearchUnsupported = errors.New("direct links cannot be searched")

type DirectSource struct {
	prober  *Prober
	timeout time.Duration
}

func New(prober *Prober) *DirectSource {
	return &DirectSource{prober: prober, timeout: 5 * time.Second}
}

func (d *DirectSource) Match(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

func (d *DirectSource) Link(input string) (*sources.TrackInfo, error) {
	input = strings.TrimSpace(input)

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if _, err := d.prober.Probe(ctx, input); err != nil {
		return nil, err
	}

	return &sources.TrackInfo{
		URL:              input,
		SourceName:       sources.SourceDirect,
		AvailableParsers: d.AvailableParsers(),
	}, nil
}

func (d *DirectSource) Search(context.Context, string, int) ([]*sources.TrackInfo, error) {
	return nil, ErrSearchUnsupported
}

func (d *DirectSource) SourceName() string {
	return sources.SourceDirect
}

func (d *DirectSource) AvailableParsers() []string {
	return []string{"ffmpeg-link"}
}
