package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/music/parsers"
)

const (
	maxRecoveryAttempts = 3

	// a stream ending this close to the known duration is a normal end
	endTolerance = 2 * time.Second

	bytesPerSecond = parsers.SampleRate * parsers.Channels * 2
)

var ErrAllParsersFailed = errors.New("all parsers failed or exceeded recovery attempts")

// RecoveryStream reads PCM for one track and reopens it at the last position
// when the upstream ends early, falling back to the next parser once one has
// used up its attempts.
type RecoveryStream struct {
	ctx         context.Context
	opener      *Opener
	track       *parsers.TrackParse
	parserIndex int
	stream      *TrackStream
	posBytes    int64
	openedAt    int64
	retries     map[string]int
}

func NewRecoveryStream(ctx context.Context, opener *Opener, track *parsers.TrackParse) *RecoveryStream {
	return &RecoveryStream{
		ctx:     ctx,
		opener:  opener,
		track:   track,
		retries: make(map[string]int),
	}
}

// Open opens the stream at seekSec with the first usable parser.
func (rs *RecoveryStream) Open(seekSec float64) error {
	available := rs.track.Info.AvailableParsers
	var errs []error

	for i := rs.parserIndex; i < len(available); i++ {
		parser := available[i]
		if rs.retries[parser] >= maxRecoveryAttempts {
			continue
		}
		if err := rs.ctx.Err(); err != nil {
			return err
		}

		stream, err := rs.opener.Open(rs.ctx, rs.track, parser, seekSec)
		if err != nil {
			log.Warn().Err(err).Str("parser", parser).Str("url", rs.track.URL()).Msg("[RecoveryStream] Failed to open stream")
			rs.retries[parser]++
			errs = append(errs, fmt.Errorf("parser %s failed: %w", parser, err))
			continue
		}

		rs.parserIndex = i
		rs.stream = stream
		rs.posBytes = int64(seekSec * bytesPerSecond)
		rs.posBytes -= rs.posBytes % 4
		rs.openedAt = rs.posBytes
		log.Debug().Str("parser", parser).Float64("seek", seekSec).Msg("[RecoveryStream] Opened stream")
		return nil
	}

	return errors.Join(append([]error{ErrAllParsersFailed}, errs...)...)
}

func (rs *RecoveryStream) Read(p []byte) (int, error) {
	if rs.stream == nil {
		return 0, errors.New("stream not opened")
	}

	n, err := rs.stream.Read(p)
	rs.posBytes += int64(n)

	if errors.Is(err, io.EOF) {
		if n > 0 {
			return n, nil
		}
		if rs.finished() {
			return 0, io.EOF
		}
		return rs.recover(p)
	}
	return n, err
}

// finished decides whether an EOF is the real end of the track.
func (rs *RecoveryStream) finished() bool {
	if rs.ctx.Err() != nil {
		return true
	}
	if rs.track.Duration > 0 {
		return rs.Position() >= rs.track.Duration-endTolerance
	}
	// unknown length: only a stream that produced audio is worth reopening
	return rs.posBytes == rs.openedAt
}

func (rs *RecoveryStream) recover(p []byte) (int, error) {
	parser := rs.stream.Parser()
	rs.retries[parser]++
	log.Info().Str("parser", parser).Int("attempt", rs.retries[parser]).Dur("position", rs.Position()).
		Msg("[RecoveryStream] Stream ended prematurely, attempting recovery")

	_ = rs.stream.Close()
	rs.stream = nil

	if err := rs.Open(rs.Position().Seconds()); err != nil {
		log.Warn().Err(err).Msg("[RecoveryStream] Recovery failed")
		return 0, io.EOF
	}
	return rs.Read(p)
}

// Position is the playback offset reached so far.
func (rs *RecoveryStream) Position() time.Duration {
	return time.Duration(float64(rs.posBytes) / bytesPerSecond * float64(time.Second))
}

func (rs *RecoveryStream) Parser() string {
	if rs.stream != nil {
		return rs.stream.Parser()
	}
	return ""
}

func (rs *RecoveryStream) Close() error {
	if rs.stream != nil {
		return rs.stream.Close()
	}
	return nil
}
