package middleware

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:    "Administrator",
	discordgo.PermissionManageGuild:      "Manage Server",
	discordgo.PermissionManageChannels:   "Manage Channels",
	discordgo.PermissionManageRoles:      "Manage Roles",
	discordgo.PermissionManageMessages:   "Manage Messages",
	discordgo.PermissionVoiceConnect:     "Connect to Voice Channel",
	discordgo.PermissionVoiceSpeak:       "Speak",
	discordgo.PermissionVoiceMoveMembers: "Move Members",
}

var (
	ErrMissingPermissions = errors.New("missing permissions")
	ErrNotDJ              = errors.New("missing DJ role")
)

// DJRoleFunc returns the DJ role configured for a guild, "" when none.
type DJRoleFunc func(guildID string) string

// WithUserPermissionCheck rejects callers lacking any of the command's
// UserPermissions, and, for DJ restricted commands, callers without the
// guild's DJ role. Administrators pass both checks.
func WithUserPermissionCheck(djRole DJRoleFunc) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok || v.Event.GuildID == "" {
				return c.Run(ctx, inv)
			}

			var required []int64
			if meta, ok := command.Meta(c); ok {
				required = meta.UserPermissions()
			}
			var role string
			if djRole != nil && command.RequiresDJ(c) {
				role = djRole(v.Event.GuildID)
			}

			if err := Authorize(v.Event.Member, required, role); err != nil {
				user := bot.InteractionUser(v.Event)
				log.Info().Str("guild", v.Event.GuildID).Str("user", user.ID).Str("command", c.Name()).Err(err).Msg("[Middleware] Command denied")
				return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
					Description: denialMessage(err, required),
				})
			}
			return c.Run(ctx, inv)
		})
	}
}

// Authorize checks member against the required permissions (any of them
// suffices) and, when djRole is set, the DJ role.
func Authorize(member *discordgo.Member, required []int64, djRole string) error {
	if member == nil {
		return ErrMissingPermissions
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return nil
	}

	if len(required) > 0 && !slices.ContainsFunc(required, func(p int64) bool { return member.Permissions&p != 0 }) {
		return ErrMissingPermissions
	}
	if djRole != "" && !slices.Contains(member.Roles, djRole) {
		return ErrNotDJ
	}
	return nil
}

func denialMessage(err error, required []int64) string {
	if errors.Is(err, ErrNotDJ) {
		return "Only members with the DJ role can control playback."
	}

	names := make([]string, 0, len(required))
	for _, p := range required {
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		names = append(names, name)
	}
	return fmt.Sprintf("You need at least one of the following permissions to run this command:\n`%s`", strings.Join(names, "`, `"))
}
