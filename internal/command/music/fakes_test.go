package music

import (
	"context"
	"fmt"
	"sync"

	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/sources"
	"guild-jukebox/internal/music/voice"
)

func makeTracks(prefix string, n int) []*sources.TrackInfo {
	out := make([]*sources.TrackInfo, n)
	for i := range out {
		name := fmt.Sprintf("%s%d", prefix, i+1)
		out[i] = &sources.TrackInfo{URL: "https://example.com/" + name, Title: name}
	}
	return out
}

type mapResolver struct {
	mu      sync.Mutex
	results map[string][]*sources.TrackInfo
	queries []string
}

func (r *mapResolver) Resolve(_ context.Context, query string) ([]*sources.TrackInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	return r.results[query], nil
}

type stubTransport struct {
	mu        sync.Mutex
	channelID string
	handler   voice.EventHandler
	last      voice.PlayRequest
}

func (t *stubTransport) ChannelID() string { return t.channelID }
func (t *stubTransport) Play(req voice.PlayRequest) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = req
}
func (t *stubTransport) Pause()                 {}
func (t *stubTransport) Resume()                {}
func (t *stubTransport) Stop()                  {}
func (t *stubTransport) Close()                 {}
func (t *stubTransport) HandleDisconnect()      {}
func (t *stubTransport) HandleReconnect(string) {}

// finish reports the current track as ended.
func (t *stubTransport) finish() {
	t.mu.Lock()
	token := t.last.Token
	t.mu.Unlock()
	t.handler.TrackEnded(t, token)
}

type stubConnector struct {
	mu         sync.Mutex
	transports []*stubTransport
}

func (c *stubConnector) Connect(_ context.Context, _, channelID string, h voice.EventHandler) (voice.Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stubTransport{channelID: channelID, handler: h}
	c.transports = append(c.transports, t)
	return t, nil
}

func (c *stubConnector) last() *stubTransport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transports[len(c.transports)-1]
}

type voiceMap map[string]string // userID -> channelID

func (v voiceMap) UserVoiceChannel(_, userID string) string { return v[userID] }

type memorySettings struct {
	mu      sync.Mutex
	artists map[string]string
	djs     map[string]string
	prefix  map[string]string
}

func newMemorySettings() *memorySettings {
	return &memorySettings{artists: map[string]string{}, djs: map[string]string{}, prefix: map[string]string{}}
}

func (m *memorySettings) SetDefaultArtist(g, a string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artists[g] = a
	return nil
}

func (m *memorySettings) SetDJRole(g, r string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.djs[g] = r
	return nil
}

func (m *memorySettings) SetPrefix(g, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefix[g] = p
	return nil
}

type memoryQueues struct {
	saved map[string][]*sources.TrackInfo
}

func (q *memoryQueues) Save(_ context.Context, guildID string, tracks []*sources.TrackInfo) error {
	if q.saved == nil {
		q.saved = make(map[string][]*sources.TrackInfo)
	}
	q.saved[guildID] = append([]*sources.TrackInfo(nil), tracks...)
	return nil
}

func (q *memoryQueues) Load(_ context.Context, guildID string) ([]*sources.TrackInfo, error) {
	return q.saved[guildID], nil
}

type staticLyrics string

func (l staticLyrics) Lyrics(context.Context, *sources.TrackInfo) (string, error) {
	return string(l), nil
}

type fixture struct {
	deps      *Deps
	registry  *session.Registry
	resolver  *mapResolver
	connector *stubConnector
	settings  *memorySettings
}

func newFixture() *fixture {
	f := &fixture{
		resolver:  &mapResolver{results: map[string][]*sources.TrackInfo{}},
		connector: &stubConnector{},
		settings:  newMemorySettings(),
	}
	f.registry = session.NewRegistry(nil, session.Options{Resolver: f.resolver, Connector: f.connector})
	f.deps = &Deps{
		Sessions: f.registry,
		Voice:    voiceMap{"listener": "vc1"},
		Settings: f.settings,
	}
	return f
}
