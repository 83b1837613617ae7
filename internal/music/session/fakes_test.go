package session

import (
	"context"
	"fmt"
	"sync"

	"guild-jukebox/internal/music/sources"
	"guild-jukebox/internal/music/voice"
)

func makeTracks(prefix string, n int) []*sources.TrackInfo {
	out := make([]*sources.TrackInfo, n)
	for i := range out {
		out[i] = &sources.TrackInfo{URL: fmt.Sprintf("%s%d", prefix, i+1), Title: fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return out
}

type fakeResolver struct {
	mu      sync.Mutex
	results map[string][]*sources.TrackInfo
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   chan string
	queries []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		results: make(map[string][]*sources.TrackInfo),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		calls:   make(chan string, 64),
	}
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) ([]*sources.TrackInfo, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate := f.gates[query]
	res, err := f.results[query], f.errs[query]
	f.mu.Unlock()

	f.calls <- query
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

func (f *fakeResolver) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeTransport struct {
	mu          sync.Mutex
	channelID   string
	plays       []voice.PlayRequest
	pauses      int
	resumes     int
	stops       int
	closes      int
	volume      float64
	disconnects int
	reconnects  []string
}

func (t *fakeTransport) ChannelID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channelID
}

func (t *fakeTransport) Play(req voice.PlayRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plays = append(t.plays, req)
}

func (t *fakeTransport) Pause()  { t.mu.Lock(); t.pauses++; t.mu.Unlock() }
func (t *fakeTransport) Resume() { t.mu.Lock(); t.resumes++; t.mu.Unlock() }
func (t *fakeTransport) Stop()   { t.mu.Lock(); t.stops++; t.mu.Unlock() }
func (t *fakeTransport) Close()  { t.mu.Lock(); t.closes++; t.mu.Unlock() }

func (t *fakeTransport) HandleDisconnect() { t.mu.Lock(); t.disconnects++; t.mu.Unlock() }

func (t *fakeTransport) HandleReconnect(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconnects = append(t.reconnects, channelID)
}

func (t *fakeTransport) SetVolume(v float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = v
}

func (t *fakeTransport) lastPlay() voice.PlayRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.plays) == 0 {
		return voice.PlayRequest{}
	}
	return t.plays[len(t.plays)-1]
}

func (t *fakeTransport) counts() (plays, stops, closes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.plays), t.stops, t.closes
}

type fakeConnector struct {
	mu         sync.Mutex
	transports []*fakeTransport
	err        error
	// build overrides the fake transport when set
	build func(guildID, channelID string, h voice.EventHandler) voice.Transport
}

func (c *fakeConnector) Connect(_ context.Context, guildID, channelID string, h voice.EventHandler) (voice.Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, &voice.ConnectError{GuildID: guildID, ChannelID: channelID, Err: c.err}
	}
	if c.build != nil {
		return c.build(guildID, channelID, h), nil
	}
	t := &fakeTransport{channelID: channelID, volume: 1}
	c.transports = append(c.transports, t)
	return t, nil
}

func (c *fakeConnector) last() *fakeTransport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.transports) == 0 {
		return nil
	}
	return c.transports[len(c.transports)-1]
}

func (c *fakeConnector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transports)
}

type fakeSettings struct {
	mu      sync.Mutex
	artists map[string]string
	djs     map[string]string
	gates   map[string]chan struct{}
	loads   int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		artists: make(map[string]string),
		djs:     make(map[string]string),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeSettings) DefaultArtist(guildID string) (string, error) {
	f.mu.Lock()
	gate := f.gates[guildID]
	f.loads++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.artists[guildID], nil
}

func (f *fakeSettings) DJRole(guildID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.djs[guildID], nil
}

func (f *fakeSettings) Prefix(string) (string, error) { return "!", nil }
