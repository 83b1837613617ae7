package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/internal/storage"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 2

// HistoryReader returns the stored command history of a guild, oldest first.
type HistoryReader interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

type CommandsLogCommand struct {
	History HistoryReader
}

func (c *CommandsLogCommand) Name() string        { return "commands-log" }
func (c *CommandsLogCommand) Description() string { return "Review recently used commands" }
func (c *CommandsLogCommand) Group() string       { return "core" }
func (c *CommandsLogCommand) Category() string    { return "⚙️ Settings" }
func (c *CommandsLogCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageGuild}
}

func (c *CommandsLogCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *CommandsLogCommand) Run(ctx any) error {
	v, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	records, err := c.History.FetchCommandHistory(v.Event.GuildID)
	if err != nil {
		return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Failed to fetch command logs: %v", err),
		})
	}
	if len(records) == 0 {
		return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
			Description: "No command history found.",
		})
	}

	return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
		Title:       "Recent commands",
		Description: formatHistory(records),
	})
}

// formatHistory renders newest first and stops before Discord's length limit.
func formatHistory(records []storage.CommandHistoryRecord) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%-19s\t%-15s\t%-12s\t%s\n", "# Datetime", "# Username", "# Channel", "# Command"))

	for idx := len(records) - 1; idx >= 0; idx-- {
		r := records[idx]
		cmdline := "/" + r.Command
		if r.Param != "" {
			cmdline += " " + r.Param
		}
		line := fmt.Sprintf("%-19s\t%-15s\t#%-12s\t%s\n",
			r.Datetime.Format("2006-01-02 15:04:05"),
			r.Username,
			r.ChannelName,
			cmdline,
		)
		if builder.Len()+len(line) > maxContentLength {
			break
		}
		builder.WriteString(line)
	}

	return codeLeftBlockWrapper + "\n" + builder.String() + codeRightBlockWrapper
}
