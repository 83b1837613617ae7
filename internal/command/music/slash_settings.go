package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type SetDJCommand struct{ base }

func (c *SetDJCommand) Name() string        { return "setdj" }
func (c *SetDJCommand) Description() string { return "Restrict playback controls to a role" }

func (c *SetDJCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "DJ role (leave empty to allow everyone with Manage Server)",
			},
		},
	}
}

func (c *SetDJCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *SetDJCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	roleID := req.String("role")
	if err := c.deps.Settings.SetDJRole(req.GuildID, roleID); err != nil {
		return nil, fmt.Errorf("save DJ role: %w", err)
	}
	req.session(c.deps).SetDJRole(roleID)

	if roleID == "" {
		return infoEmbed("DJ role cleared."), nil
	}
	return infoEmbed(fmt.Sprintf("DJ role set to <@&%s>.", roleID)), nil
}

type SetPrefixCommand struct{ base }

const maxPrefixLen = 5

func (c *SetPrefixCommand) Name() string        { return "setprefix" }
func (c *SetPrefixCommand) Description() string { return "Set the text command prefix" }

func (c *SetPrefixCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prefix",
				Description: "New prefix",
				Required:    true,
				MaxLength:   maxPrefixLen,
			},
		},
	}
}

func (c *SetPrefixCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *SetPrefixCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	prefix := strings.TrimSpace(req.String("prefix"))
	if prefix == "" || len(prefix) > maxPrefixLen || strings.ContainsAny(prefix, " \t\n") {
		return infoEmbed(fmt.Sprintf("The prefix must be 1 to %d characters without spaces.", maxPrefixLen)), nil
	}
	if err := c.deps.Settings.SetPrefix(req.GuildID, prefix); err != nil {
		return nil, fmt.Errorf("save prefix: %w", err)
	}
	req.session(c.deps).SetPrefix(prefix)

	return infoEmbed(fmt.Sprintf("Prefix set to `%s`.", prefix)), nil
}
