package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"guild-jukebox/pkg/util"
)

// Settings is the persisted per-guild configuration a new session starts from.
type Settings interface {
	DefaultArtist(guildID string) (string, error)
	DJRole(guildID string) (string, error)
	Prefix(guildID string) (string, error)
}

// Registry owns at most one live session per guild.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	settings Settings
	opts     Options
	onCreate func(*Session)
}

// NewRegistry builds sessions with opts. OnTerminate in opts is replaced by
// the registry's own cleanup.
func NewRegistry(settings Settings, opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		settings: settings,
		opts:     opts,
	}
}

// OnCreate registers a hook run for every session that wins creation.
func (r *Registry) OnCreate(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = fn
}

// GetOrCreate returns the guild's live session, creating an Idle one from
// stored settings when there is none. Settings are read outside the
// registry lock, so a slow store never blocks other guilds; when two callers
// race for the same guild, the first to insert wins and both get it.
func (r *Registry) GetOrCreate(guildID string) *Session {
	if s := r.Lookup(guildID); s != nil {
		return s
	}

	fresh := r.build(guildID)

	r.mu.Lock()
	if s, ok := r.sessions[guildID]; ok && s.State() != Terminated {
		r.mu.Unlock()
		return s
	}
	r.sessions[guildID] = fresh
	hook := r.onCreate
	r.mu.Unlock()

	log.Debug().Str("guild", guildID).Msg("[Registry] Session created")
	if hook != nil {
		hook(fresh)
	}
	return fresh
}

// Lookup returns the live session without creating one.
func (r *Registry) Lookup(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[guildID]
	if !ok || s.State() == Terminated {
		return nil
	}
	return s
}

// DJRole reads the guild's DJ role from its live session, or from stored
// settings when there is none. It never creates a session.
func (r *Registry) DJRole(guildID string) string {
	if s := r.Lookup(guildID); s != nil {
		return s.DJRole()
	}
	if r.settings == nil {
		return ""
	}
	role, err := r.settings.DJRole(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("[Registry] Failed to load DJ role")
	}
	return role
}

// Remove drops the guild's entry. Missing entries are ignored.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

// removeIf drops the entry only while it still refers to s, so a late
// teardown never removes a session created after it.
func (r *Registry) removeIf(guildID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[guildID] == s {
		delete(r.sessions, guildID)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

const shutdownWorkers = 8

// Shutdown terminates every session, giving up on stragglers when ctx ends.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	return util.Each(ctx, all, shutdownWorkers, (*Session).Terminate)
}

func (r *Registry) build(guildID string) *Session {
	var cfg Config
	if r.settings != nil {
		var err error
		if cfg.DefaultArtist, err = r.settings.DefaultArtist(guildID); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Registry] Failed to load default artist")
		}
		if cfg.DJRole, err = r.settings.DJRole(guildID); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Registry] Failed to load DJ role")
		}
		if cfg.Prefix, err = r.settings.Prefix(guildID); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Registry] Failed to load prefix")
		}
	}

	opts := r.opts
	opts.OnTerminate = func(s *Session) { r.removeIf(guildID, s) }
	// a shared generator would need its own lock
	opts.Rand = nil
	return New(guildID, cfg, opts)
}
