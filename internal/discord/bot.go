package discord

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/internal/command/music"
	"guild-jukebox/internal/config"
	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/stream"
	voicediscord "guild-jukebox/internal/music/voice/discord"
	"guild-jukebox/internal/storage"
	"guild-jukebox/pkg/cmd"
)

const shutdownTimeout = 10 * time.Second

// Bot connects the command registry and the guild sessions to a Discord gateway session.
type Bot struct {
	dg       *discordgo.Session
	storage  *storage.Storage
	cfg      *config.Config
	sessions *session.Registry
	cmds     *cmd.Registry
	ctx      context.Context
}

// NewBot prepares the gateway session. Nothing connects until Run.
func NewBot(cfg *config.Config, store *storage.Storage, resolver session.Resolver, opener *stream.Opener) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:      dg,
		storage: store,
		cfg:     cfg,
		cmds:    cmd.NewRegistry(),
		ctx:     context.Background(),
	}
	b.sessions = session.NewRegistry(store, session.Options{
		Resolver:  resolver,
		Connector: voicediscord.NewConnector(dg, opener),
	})
	b.sessions.OnCreate(func(s *session.Session) {
		go music.Announce(s, b.send)
	})
	return b, nil
}

// Sessions exposes the per-guild playback sessions.
func (b *Bot) Sessions() *session.Registry { return b.sessions }

// Commands is the registry slash interactions are dispatched from.
func (b *Bot) Commands() *cmd.Registry { return b.cmds }

// Run opens the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.configureIntents()
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onVoiceStateUpdate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("[Discord] Shutdown signal received, cleaning up")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.sessions.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("[Discord] Sessions did not stop in time")
	}
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates
}

func (b *Bot) send(channelID string, embed *discordgo.MessageEmbed) error {
	return bot.MessageEmbed(b.dg, channelID, embed)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		if !b.cfg.InitSlashCommands {
			continue
		}
		if err := b.registerCommands(g.ID); err != nil {
			log.Error().Err(err).Str("guild", g.ID).Msg("[Discord] Failed to register slash commands")
		}
	}
	if !b.cfg.InitSlashCommands {
		log.Info().Msg("[Discord] Registering slash commands skipped")
	}

	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("[Discord] ✅ Bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("[Discord] Guild available")

	if b.leaveIfBlacklisted(s, g.ID) || !b.cfg.InitSlashCommands {
		return
	}
	if err := b.registerCommands(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("[Discord] Failed to register commands for guild")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		log.Debug().Int("type", int(i.Type)).Msg("[Discord] Ignoring interaction")
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand {
		return
	}

	c := b.cmds.Get(data.Name)
	if c == nil {
		log.Warn().Str("command", data.Name).Msg("[Discord] Unknown command")
		return
	}

	inv := &cmd.Invocation{
		Data: &command.SlashInteractionContext{
			Ctx:     b.ctx,
			Session: s,
			Event:   i,
			Storage: b.storage,
		},
	}
	if err := c.Run(b.ctx, inv); err != nil {
		log.Error().Err(err).Str("command", data.Name).Str("guild", i.GuildID).Msg("[Discord] Error running slash command")
		_ = bot.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Error running slash command: %v", err),
		})
	}
}

// onVoiceStateUpdate forwards the bot's own voice state to the guild's
// session, which is how kicks, moves and reconnects reach playback.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || v.UserID != s.State.User.ID {
		return
	}
	if sess := b.sessions.Lookup(v.GuildID); sess != nil {
		sess.VoiceStateChanged(v.ChannelID)
	}
}

// UserVoiceChannel returns the voice channel userID sits in, "" when none.
func (b *Bot) UserVoiceChannel(guildID, userID string) string {
	return userVoiceChannel(b.dg.State, guildID, userID)
}

func userVoiceChannel(state *discordgo.State, guildID, userID string) string {
	guild, err := state.Guild(guildID)
	if err != nil {
		return ""
	}

	state.RLock()
	defer state.RUnlock()
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !slices.Contains(b.cfg.DiscordGuildBlacklist, guildID) {
		return false
	}
	log.Info().Str("guild", guildID).Msg("[Discord] Leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("[Discord] Failed to leave guild")
	}
	return true
}
