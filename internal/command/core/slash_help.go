package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/bot"
	"guild-jukebox/internal/command"
	"guild-jukebox/pkg/cmd"
)

const appName = "Guild Jukebox"

// HelpCommand lists the commands of Registry.
type HelpCommand struct {
	Registry *cmd.Registry
}

func (c *HelpCommand) Name() string             { return "help" }
func (c *HelpCommand) Description() string      { return "Get a list of available commands" }
func (c *HelpCommand) Group() string            { return "core" }
func (c *HelpCommand) Category() string         { return "🕯️ Information" }
func (c *HelpCommand) UserPermissions() []int64 { return []int64{} }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "view",
				Description: "How to list the commands",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "By category", Value: "category"},
					{Name: "Flat", Value: "flat"},
				},
			},
		},
	}
}

func (c *HelpCommand) Run(ctx any) error {
	v, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	var output string
	if opt, ok := command.Options(v.Event)["view"]; ok && opt.StringValue() == "flat" {
		output = buildHelpFlat(c.Registry.GetAll())
	} else {
		output = buildHelpByCategory(c.Registry.GetAll())
	}

	return bot.RespondEmbedEphemeral(v.Session, v.Event, &discordgo.MessageEmbed{
		Title:       appName + " Help",
		Description: output,
	})
}

func buildHelpByCategory(all []cmd.Command) string {
	byCategory := make(map[string][]cmd.Command)
	for _, c := range all {
		cat := "Other"
		if meta, ok := command.Meta(c); ok && meta.Category() != "" {
			cat = meta.Category()
		}
		byCategory[cat] = append(byCategory[cat], c)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var sb strings.Builder
	for _, cat := range cats {
		fmt.Fprintf(&sb, "**%s**\n", cat)
		sb.WriteString(buildHelpFlat(byCategory[cat]))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func buildHelpFlat(all []cmd.Command) string {
	sorted := append([]cmd.Command(nil), all...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	var sb strings.Builder
	for _, c := range sorted {
		fmt.Fprintf(&sb, "`/%s` - %s\n", c.Name(), c.Description())
	}
	return sb.String()
}
