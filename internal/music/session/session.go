// Package session holds the per-guild playback state machine and the
// registry that owns one session per guild.
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/music/sources"
	"guild-jukebox/internal/music/voice"
)

// Resolver turns a query into an ordered list of tracks.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]*sources.TrackInfo, error)
}

// Config mirrors the guild settings a session caches.
type Config struct {
	DefaultArtist string
	DJRole        string
	Prefix        string
}

type Options struct {
	Resolver  Resolver
	Connector voice.Connector
	// Rand drives Shuffle. nil seeds a fresh generator.
	Rand *rand.Rand
	// OnTerminate runs once, after the session reached Terminated.
	OnTerminate func(*Session)
}

type PlayRequest struct {
	Query         string
	ChannelID     string // voice channel of the caller
	TextChannelID string // where automatic announcements go
}

type PlayResult struct {
	NowPlaying *sources.TrackInfo
	Queued     int
}

const statusBuffer = 10

// maxTrackFailures is how many times in a row one track may fail before it
// leaves the loop rotation.
const maxTrackFailures = 3

// Session is the playback orchestrator of one guild. Every state transition
// happens under mu; network waits (resolve, connect) happen outside it.
type Session struct {
	mu sync.Mutex
	// connectMu allows one voice join at a time; the gateway keeps a single
	// voice connection per guild, so concurrent joins share it.
	connectMu sync.Mutex

	guildID     string
	resolver    Resolver
	connector   voice.Connector
	rng         *rand.Rand
	onTerminate func(*Session)

	queue         []*sources.TrackInfo
	nowPlaying    *sources.TrackInfo
	state         State
	loop          LoopMode
	volume        float64
	defaultArtist string
	djRole        string
	prefix        string
	textChannelID string

	generation uint64
	token      uint64
	transport  voice.Transport

	failedTrack *sources.TrackInfo
	failures    int

	status chan StatusEvent
}

func New(guildID string, cfg Config, opts Options) *Session {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		guildID:       guildID,
		resolver:      opts.Resolver,
		connector:     opts.Connector,
		rng:           rng,
		onTerminate:   opts.OnTerminate,
		state:         Idle,
		loop:          LoopOff,
		volume:        1,
		defaultArtist: cfg.DefaultArtist,
		djRole:        cfg.DJRole,
		prefix:        cfg.Prefix,
		status:        make(chan StatusEvent, statusBuffer),
	}
}

func (s *Session) GuildID() string { return s.guildID }

// Play resolves the query (or the default artist) and replaces the queue and
// the current track with the result. A result that arrives after a newer
// Play started is dropped with ErrStaleResult.
func (s *Session) Play(ctx context.Context, req PlayRequest) (*PlayResult, error) {
	gen, query, err := s.begin(req.ChannelID, req.Query, true)
	if err != nil {
		return nil, err
	}

	log.Info().Str("guild", s.guildID).Str("query", query).Uint64("generation", gen).Msg("[Session] Resolving")

	tracks, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", query, err)
	}
	return s.commit(ctx, gen, req, tracks)
}

// PlayTracks replaces the queue with already resolved tracks, with the same
// replacement and staleness rules as Play.
func (s *Session) PlayTracks(ctx context.Context, req PlayRequest, tracks []*sources.TrackInfo) (*PlayResult, error) {
	gen, _, err := s.begin(req.ChannelID, "", false)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, gen, req, tracks)
}

// begin validates a queue-replacing request and claims a new generation.
func (s *Session) begin(channelID, query string, needQuery bool) (uint64, string, error) {
	if channelID == "" {
		return 0, "", ErrNoVoiceChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Terminated {
		return 0, "", ErrSessionClosed
	}
	if s.busyElsewhereLocked(channelID) {
		return 0, "", ErrWrongChannel
	}
	if needQuery {
		query = strings.TrimSpace(query)
		if query == "" {
			query = s.defaultArtist
		}
		if query == "" {
			return 0, "", ErrNoArtist
		}
	}
	s.generation++
	return s.generation, query, nil
}

func (s *Session) commit(ctx context.Context, gen uint64, req PlayRequest, tracks []*sources.TrackInfo) (*PlayResult, error) {
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}
	if len(tracks) > sources.MaxResults {
		tracks = tracks[:sources.MaxResults]
	}

	if err := s.ensureTransport(ctx, gen, req.ChannelID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCurrentLocked(gen); err != nil {
		return nil, err
	}

	s.queue = slices.Clone(tracks[1:])
	s.nowPlaying = tracks[0]
	s.state = Playing
	s.failedTrack, s.failures = nil, 0
	if req.TextChannelID != "" {
		s.textChannelID = req.TextChannelID
	}
	s.startLocked(0)
	s.emitLocked(StatusEvent{Status: StatusPlaying, Track: s.nowPlaying})

	log.Info().Str("guild", s.guildID).Str("track", s.nowPlaying.Label()).Int("queued", len(s.queue)).Msg("[Session] Now playing")
	return &PlayResult{NowPlaying: s.nowPlaying, Queued: len(s.queue)}, nil
}

// busyElsewhereLocked reports an active track in a different channel.
func (s *Session) busyElsewhereLocked(channelID string) bool {
	return s.transport != nil && s.nowPlaying != nil && s.transport.ChannelID() != channelID
}

func (s *Session) checkCurrentLocked(gen uint64) error {
	if s.state == Terminated {
		return ErrSessionClosed
	}
	if gen != s.generation {
		return ErrStaleResult
	}
	return nil
}

// ensureTransport makes sure the session is connected to channelID. An idle
// transport in another channel is replaced. Joins are serialized, and a join
// that finishes after a newer request still becomes the session transport so
// the newer request reuses it instead of dropping the shared connection.
func (s *Session) ensureTransport(ctx context.Context, gen uint64, channelID string) error {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	s.mu.Lock()
	if err := s.checkCurrentLocked(gen); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.busyElsewhereLocked(channelID) {
		s.mu.Unlock()
		return ErrWrongChannel
	}
	old := s.transport
	if old != nil && old.ChannelID() == channelID {
		s.mu.Unlock()
		return nil
	}
	s.transport = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}

	t, err := s.connector.Connect(ctx, s.guildID, channelID, s)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		t.Close()
		return ErrSessionClosed
	}
	s.transport = t
	err = s.checkCurrentLocked(gen)
	s.mu.Unlock()
	if err != nil {
		log.Debug().Str("guild", s.guildID).Str("channel", channelID).Msg("[Session] Kept connection of superseded request")
	}
	return err
}

// startLocked (re)starts nowPlaying on the transport at offset seek.
func (s *Session) startLocked(seek time.Duration) {
	s.token++
	if s.transport == nil {
		return
	}
	s.transport.Play(voice.PlayRequest{
		Track:  s.nowPlaying,
		Seek:   seek,
		Volume: s.volume,
		Paused: s.state == Paused,
		Token:  s.token,
	})
}

// advanceLocked is the single transition taken when a track ends, fails, or
// is skipped.
func (s *Session) advanceLocked(automatic bool) {
	finished := s.nowPlaying
	rotate := s.loop != LoopOff
	if rotate && s.failedTrack == finished && s.failures >= maxTrackFailures {
		log.Warn().Str("guild", s.guildID).Str("track", finished.Label()).Int("failures", s.failures).Msg("[Session] Dropping failing track from loop")
		rotate = false
	}

	switch {
	case s.loop == LoopSong && rotate:
		// replay the same reference
	case len(s.queue) > 0 || (s.loop == LoopQueue && rotate):
		if s.loop == LoopQueue && rotate {
			s.queue = append(s.queue, finished)
		}
		s.nowPlaying = s.queue[0]
		s.queue = s.queue[1:]
	default:
		s.nowPlaying = nil
		s.state = Idle
		s.token++
		if s.transport != nil {
			s.transport.Stop()
		}
		s.emitLocked(StatusEvent{Status: StatusStopped, Automatic: automatic})
		log.Info().Str("guild", s.guildID).Msg("[Session] Queue finished")
		return
	}

	s.state = Playing
	s.startLocked(0)
	s.emitLocked(StatusEvent{Status: StatusPlaying, Track: s.nowPlaying, Automatic: automatic})
}

// isCurrentLocked filters events from replaced transports and superseded plays.
func (s *Session) isCurrentLocked(t voice.Transport, token uint64) bool {
	return t == s.transport && token == s.token && s.nowPlaying != nil
}

func (s *Session) TrackEnded(t voice.Transport, token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrentLocked(t, token) {
		return
	}
	s.failedTrack, s.failures = nil, 0
	s.advanceLocked(true)
}

// TrackFailed treats a broken track as finished so playback never wedges.
func (s *Session) TrackFailed(t voice.Transport, token uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrentLocked(t, token) {
		return
	}
	if s.failedTrack == s.nowPlaying {
		s.failures++
	} else {
		s.failedTrack, s.failures = s.nowPlaying, 1
	}
	log.Warn().Err(err).Str("guild", s.guildID).Str("track", s.nowPlaying.Label()).Msg("[Session] Track failed, advancing")
	s.emitLocked(StatusEvent{Status: StatusError, Track: s.nowPlaying, Err: err, Automatic: true})
	s.advanceLocked(true)
}

func (s *Session) DisconnectExpired(t voice.Transport) {
	s.mu.Lock()
	if t != s.transport || s.state == Terminated {
		s.mu.Unlock()
		return
	}
	log.Info().Str("guild", s.guildID).Msg("[Session] Voice connection lost, terminating")
	s.finish(s.terminateLocked())
}

// Terminate clears the session and releases its transport. Safe to call
// more than once.
func (s *Session) Terminate() {
	s.mu.Lock()
	if s.state == Terminated {
		s.mu.Unlock()
		return
	}
	s.finish(s.terminateLocked())
}

func (s *Session) terminateLocked() voice.Transport {
	t := s.transport
	s.transport = nil
	s.state = Terminated
	s.queue = nil
	s.nowPlaying = nil
	s.generation++
	s.token++
	close(s.status)
	return t
}

// finish runs the teardown side effects. It must be entered with mu held
// and releases it.
func (s *Session) finish(t voice.Transport) {
	s.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if s.onTerminate != nil {
		s.onTerminate(s)
	}
}

func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nowPlaying == nil {
		return ErrNothingPlaying
	}
	s.advanceLocked(false)
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nowPlaying == nil {
		return ErrNothingPlaying
	}
	if s.state == Paused {
		return nil
	}
	if s.transport != nil {
		s.transport.Pause()
	}
	s.state = Paused
	s.emitLocked(StatusEvent{Status: StatusPaused, Track: s.nowPlaying})
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nowPlaying == nil {
		return ErrNothingPlaying
	}
	if s.state == Playing {
		return nil
	}
	if s.transport != nil {
		s.transport.Resume()
	}
	s.state = Playing
	s.emitLocked(StatusEvent{Status: StatusResumed, Track: s.nowPlaying})
	return nil
}

// Seek restarts the current track at a "mm:ss" offset, keeping the
// paused/playing state.
func (s *Session) Seek(ts string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nowPlaying == nil {
		return ErrNothingPlaying
	}
	offset, err := ParseTimestamp(ts)
	if err != nil {
		return err
	}
	s.startLocked(offset)
	return nil
}

// Shuffle permutes the queue uniformly with a Fisher–Yates pass.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) <= 1 {
		return ErrQueueTooShort
	}
	for i := len(s.queue) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	}
	return nil
}

// SetVolume takes a percentage in [1, 100].
func (s *Session) SetVolume(percent int) error {
	if percent < 1 || percent > 100 {
		return ErrInvalidVolume
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = float64(percent) / 100
	if gs, ok := s.transport.(voice.GainSetter); ok {
		gs.SetVolume(s.volume)
	}
	return nil
}

func (s *Session) SetLoop(mode string) error {
	m, err := ParseLoopMode(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = m
	return nil
}

// ClearQueue drops upcoming tracks and returns how many were removed. The
// current track keeps playing.
func (s *Session) ClearQueue() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.queue)
	s.queue = nil
	return n
}

// VoiceStateChanged feeds the bot's own voice state into the transport. An
// empty channelID means the bot was disconnected.
func (s *Session) VoiceStateChanged(channelID string) {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()

	if t == nil {
		return
	}
	if channelID == "" {
		t.HandleDisconnect()
	} else {
		t.HandleReconnect(channelID)
	}
}

// Statuses delivers playback changes. It is closed when the session terminates.
func (s *Session) Statuses() <-chan StatusEvent {
	return s.status
}

func (s *Session) emitLocked(ev StatusEvent) {
	if s.state == Terminated {
		return
	}
	select {
	case s.status <- ev:
	default:
		log.Debug().Str("guild", s.guildID).Str("status", string(ev.Status)).Msg("[Session] Status signal dropped (channel full)")
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		GuildID:    s.guildID,
		State:      s.state,
		NowPlaying: s.nowPlaying,
		Queue:      slices.Clone(s.queue),
		Loop:       s.loop,
		Volume:     s.volume,
		Generation: s.generation,
	}
}

func (s *Session) Queue() []*sources.TrackInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queue)
}

func (s *Session) NowPlaying() *sources.TrackInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowPlaying
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Session) Loop() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) TextChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textChannelID
}

func (s *Session) DefaultArtist() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultArtist
}

func (s *Session) SetDefaultArtist(artist string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultArtist = artist
}

func (s *Session) DJRole() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.djRole
}

func (s *Session) SetDJRole(roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.djRole = roleID
}

func (s *Session) Prefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefix
}

func (s *Session) SetPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
}
