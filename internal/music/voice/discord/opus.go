package discord

import (
	"context"
	"errors"
	"fmt"
	"io"

	"layeh.com/gopus"

	"guild-jukebox/internal/music/parsers"
	"guild-jukebox/internal/music/stream"
	"guild-jukebox/internal/music/voice"
)

// SendOpus encodes PCM from src into Opus frames on out until src ends or
// ctx is cancelled. Both count as a clean finish.
func SendOpus(ctx context.Context, src io.Reader, out chan<- []byte, ctl *voice.Control) error {
	encoder, err := gopus.NewEncoder(parsers.SampleRate, parsers.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	pcmBuf := make([]byte, parsers.FrameSize*parsers.Channels*2)
	intBuf := make([]int16, parsers.FrameSize*parsers.Channels)

	for {
		if !ctl.Hold(ctx) {
			return nil
		}

		if _, err := io.ReadFull(src, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		stream.DecodePCM(intBuf, pcmBuf)
		stream.ApplyGain(intBuf, ctl.Gain())

		opus, err := encoder.Encode(intBuf, parsers.FrameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case out <- opus:
		case <-ctx.Done():
			return nil
		}
	}
}
