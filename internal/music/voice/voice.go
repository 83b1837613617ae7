// Package voice defines the transport a playback session streams through and
// the reconnect grace window shared by every implementation.
package voice

import (
	"context"
	"fmt"
	"time"

	"guild-jukebox/internal/music/sources"
)

// GraceWindow is how long a dropped connection may take to come back before
// the owning session is torn down.
const GraceWindow = 5 * time.Second

// PlayRequest describes one track to stream. Token is echoed back in the
// events for that track so the session can ignore events from superseded plays.
type PlayRequest struct {
	Track  *sources.TrackInfo
	Seek   time.Duration
	Volume float64
	Paused bool
	Token  uint64
}

// EventHandler receives transport events. Calls arrive on transport-owned
// goroutines, never while the transport holds its own lock.
type EventHandler interface {
	TrackEnded(t Transport, token uint64)
	TrackFailed(t Transport, token uint64, err error)
	DisconnectExpired(t Transport)
}

// Transport is one live voice connection owned by exactly one session.
type Transport interface {
	ChannelID() string
	// Play replaces whatever is playing. It returns immediately; the outcome
	// is reported through the EventHandler.
	Play(req PlayRequest)
	Pause()
	Resume()
	// Stop ends the active track without reporting TrackEnded.
	Stop()
	HandleDisconnect()
	HandleReconnect(channelID string)
	Close()
}

// GainSetter is implemented by transports that can change volume on the fly.
type GainSetter interface {
	SetVolume(v float64)
}

type Connector interface {
	Connect(ctx context.Context, guildID, channelID string, handler EventHandler) (Transport, error)
}

// ConnectError is returned when a voice channel cannot be joined.
type ConnectError struct {
	GuildID   string
	ChannelID string
	Err       error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to join voice channel %q in guild %s: %v", e.ChannelID, e.GuildID, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
