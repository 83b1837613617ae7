package middleware

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/pkg/cmd"
)

// WithGuildOnly answers direct-message invocations instead of running them.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.SlashInteractionContext); ok && v.Event.GuildID == "" {
				return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
					Description: "This command only works inside a server.",
				})
			}
			return c.Run(ctx, inv)
		})
	}
}
