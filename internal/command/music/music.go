// Package music holds the slash commands that drive guild playback sessions.
package music

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/source_resolver"
	"guild-jukebox/internal/music/sources"
	"guild-jukebox/internal/music/voice"
)

// Sessions is the only way commands reach playback state.
type Sessions interface {
	GetOrCreate(guildID string) *session.Session
}

// VoiceLocator finds the voice channel a member sits in, "" when none.
type VoiceLocator interface {
	UserVoiceChannel(guildID, userID string) string
}

// SettingsWriter persists guild configuration.
type SettingsWriter interface {
	SetDefaultArtist(guildID, artist string) error
	SetDJRole(guildID, roleID string) error
	SetPrefix(guildID, prefix string) error
}

// LyricsProvider looks up lyrics for a track.
type LyricsProvider interface {
	Lyrics(ctx context.Context, track *sources.TrackInfo) (string, error)
}

// QueuePersistence stores and restores a guild's queue.
type QueuePersistence interface {
	Save(ctx context.Context, guildID string, tracks []*sources.TrackInfo) error
	Load(ctx context.Context, guildID string) ([]*sources.TrackInfo, error)
}

// Deps is shared by every music command. Lyrics and Queues may be nil.
type Deps struct {
	Sessions Sessions
	Voice    VoiceLocator
	Settings SettingsWriter
	Lyrics   LyricsProvider
	Queues   QueuePersistence
}

// Request is one invocation, stripped of the Discord transport.
type Request struct {
	Ctx           context.Context
	GuildID       string
	TextChannelID string
	UserID        string
	Options       map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func (r *Request) String(name string) string {
	if opt, ok := r.Options[name]; ok {
		if s, ok := opt.Value.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns an integer option and whether it was given.
func (r *Request) Int(name string) (int64, bool) {
	opt, ok := r.Options[name]
	if !ok {
		return 0, false
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (r *Request) session(deps *Deps) *session.Session {
	return deps.Sessions.GetOrCreate(r.GuildID)
}

type executor func(req *Request) (*discordgo.MessageEmbed, error)

// base carries what all music commands share.
type base struct {
	deps *Deps
}

func (base) Group() string            { return "music" }
func (base) Category() string         { return "🎵 Music" }
func (base) UserPermissions() []int64 { return []int64{discordgo.PermissionManageGuild} }

// run answers the interaction with exec's embed, or an ephemeral error.
// Deferred commands acknowledge first because they may outlast Discord's
// reply window.
func (b base) run(ctx any, name string, deferred bool, exec executor) error {
	v, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := v.Session, v.Event

	req := &Request{
		Ctx:           v.Ctx,
		GuildID:       e.GuildID,
		TextChannelID: e.ChannelID,
		UserID:        bot.InteractionUser(e).ID,
		Options:       command.Options(e),
	}
	if req.Ctx == nil {
		req.Ctx = context.Background()
	}

	if deferred {
		if err := bot.RespondDeferred(s, e); err != nil {
			return fmt.Errorf("failed to defer /%s: %w", name, err)
		}
	}

	embed, err := exec(req)
	if err != nil {
		log.Debug().Err(err).Str("guild", req.GuildID).Str("command", name).Msg("[Music] Command failed")
		embed = errorEmbed(err)
		if deferred {
			return bot.FollowupEmbed(s, e, embed)
		}
		return bot.RespondEmbedEphemeral(s, e, embed)
	}

	if deferred {
		return bot.FollowupEmbed(s, e, embed)
	}
	return bot.RespondEmbed(s, e, embed)
}

// userFacing are session errors whose text is shown as is.
var userFacing = []error{
	session.ErrNothingPlaying,
	session.ErrNoVoiceChannel,
	session.ErrWrongChannel,
	session.ErrNoResults,
	session.ErrInvalidVolume,
	session.ErrInvalidLoopMode,
	session.ErrInvalidTimestamp,
	session.ErrQueueTooShort,
	session.ErrStaleResult,
	session.ErrSessionClosed,
}

var errUnavailable = errors.New("this feature is not available on this bot")

// Describe turns a playback error into a message for the caller.
func Describe(err error) string {
	var resErr *source_resolver.ResolutionError
	var connErr *voice.ConnectError

	switch {
	case errors.Is(err, errUnavailable):
		return sentence(errUnavailable.Error())
	case errors.Is(err, session.ErrNoArtist):
		return "Give an artist or song, or set a default artist with `/setup`."
	case errors.As(err, &resErr):
		switch resErr.Reason {
		case source_resolver.ReasonQuota:
			return "The search quota is exhausted. Try again later."
		case source_resolver.ReasonNoResults:
			return fmt.Sprintf("Nothing found for **%s**.", resErr.Query)
		default:
			return "The search service is unavailable right now."
		}
	case errors.As(err, &connErr):
		return "I could not join your voice channel."
	}

	for _, known := range userFacing {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}
	return "Something went wrong."
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		s = string(c-'a'+'A') + s[1:]
	}
	return s + "."
}
