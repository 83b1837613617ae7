package voice

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend is the platform half of a Link.
type Backend interface {
	// Stream plays req until the track ends, fails, or ctx is cancelled,
	// consulting ctl between frames.
	Stream(ctx context.Context, req PlayRequest, ctl *Control) error
	Disconnect() error
}

// Link is a Transport over a Backend. It runs at most one stream at a time:
// a new Play cancels the previous stream and waits for it to exit before
// starting.
type Link struct {
	mu        sync.Mutex
	guildID   string
	channelID string
	backend   Backend
	handler   EventHandler
	grace     *Grace

	cancel context.CancelFunc
	done   chan struct{}
	ctl    *Control
	closed bool
}

func NewLink(guildID, channelID string, backend Backend, handler EventHandler, graceWindow time.Duration) *Link {
	l := &Link{
		guildID:   guildID,
		channelID: channelID,
		backend:   backend,
		handler:   handler,
	}
	l.grace = NewGrace(graceWindow, l.expire)
	return l
}

func (l *Link) ChannelID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.channelID
}

func (l *Link) Play(req PlayRequest) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	prevDone := l.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	ctl := NewControl(req.Paused, req.Volume)
	done := make(chan struct{})
	l.cancel, l.ctl, l.done = cancel, ctl, done
	l.mu.Unlock()

	go l.run(ctx, req, ctl, prevDone, done)
}

func (l *Link) run(ctx context.Context, req PlayRequest, ctl *Control, prevDone <-chan struct{}, done chan struct{}) {
	if prevDone != nil {
		<-prevDone
	}

	var err error
	if ctx.Err() == nil {
		log.Debug().Str("guild", l.guildID).Str("url", req.Track.URL).Dur("seek", req.Seek).Msg("[Voice] Streaming track")
		err = l.backend.Stream(ctx, req, ctl)
	}
	close(done)

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.handler.TrackFailed(l, req.Token, err)
		return
	}
	l.handler.TrackEnded(l, req.Token)
}

// stopLocked cancels the active stream and returns its done channel.
func (l *Link) stopLocked() <-chan struct{} {
	if l.cancel != nil {
		l.cancel()
	}
	done := l.done
	l.cancel, l.ctl, l.done = nil, nil, nil
	return done
}

func (l *Link) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctl != nil {
		l.ctl.SetPaused(true)
	}
}

func (l *Link) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctl != nil {
		l.ctl.SetPaused(false)
	}
}

func (l *Link) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Link) SetVolume(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctl != nil {
		l.ctl.SetGain(v)
	}
}

func (l *Link) HandleDisconnect() {
	if l.grace.Start() {
		log.Info().Str("guild", l.guildID).Msg("[Voice] Disconnected, waiting for reconnect")
	}
}

func (l *Link) HandleReconnect(channelID string) {
	l.mu.Lock()
	if channelID != "" {
		l.channelID = channelID
	}
	l.mu.Unlock()

	if l.grace.Cancel() {
		log.Info().Str("guild", l.guildID).Str("channel", channelID).Msg("[Voice] Reconnected within grace window")
	}
}

// Close stops playback and leaves the channel. Safe to call more than once.
func (l *Link) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.stopLocked()
	l.mu.Unlock()

	l.grace.Stop()
	if err := l.backend.Disconnect(); err != nil {
		log.Warn().Err(err).Str("guild", l.guildID).Msg("[Voice] Disconnect failed")
	}
}

func (l *Link) expire() {
	log.Info().Str("guild", l.guildID).Msg("[Voice] Grace window elapsed, closing connection")
	l.Close()
	l.handler.DisconnectExpired(l)
}
