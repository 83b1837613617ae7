package middleware

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/internal/storage"
	"guild-jukebox/pkg/cmd"
)

// HistoryWriter persists command invocations.
type HistoryWriter interface {
	AppendCommandToHistory(guildID string, record storage.CommandHistoryRecord) error
}

// WithCommandLogger records every guild slash command after it ran.
func WithCommandLogger(history HistoryWriter) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok || v.Event.GuildID == "" {
				return err
			}

			record := newRecord(v.Session, v.Event, c.Name(), start)
			log.Info().
				Str("id", record.ID).
				Str("guild", v.Event.GuildID).
				Str("user", record.Username).
				Str("command", record.Command).
				Str("param", record.Param).
				Dur("took", time.Since(start)).
				Err(err).
				Msg("[Command] Executed")

			if history != nil {
				if e := history.AppendCommandToHistory(v.Event.GuildID, record); e != nil {
					log.Warn().Err(e).Str("guild", v.Event.GuildID).Msgf("[Command] Failed to log /%s", c.Name())
				}
			}
			return err
		})
	}
}

func newRecord(s *discordgo.Session, e *discordgo.InteractionCreate, name string, at time.Time) storage.CommandHistoryRecord {
	user := bot.InteractionUser(e)
	record := storage.CommandHistoryRecord{
		ID:        uuid.NewString(),
		ChannelID: e.ChannelID,
		UserID:    user.ID,
		Username:  user.Username,
		Command:   name,
		Param:     formatOptions(e),
		Datetime:  at,
	}
	if s != nil && s.State != nil {
		if ch, err := s.State.Channel(e.ChannelID); err == nil {
			record.ChannelName = ch.Name
		}
		if g, err := s.State.Guild(e.GuildID); err == nil {
			record.GuildName = g.Name
		}
	}
	return record
}

// formatOptions renders "name=value" pairs of the invocation's options.
func formatOptions(e *discordgo.InteractionCreate) string {
	opts := command.Options(e)
	if len(opts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(opts))
	for name, opt := range opts {
		parts = append(parts, fmt.Sprintf("%s=%v", name, opt.Value))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
