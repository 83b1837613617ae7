package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// SetupCommand stores the artist /play falls back to.
type SetupCommand struct{ base }

func (c *SetupCommand) Name() string        { return "setup" }
func (c *SetupCommand) Description() string { return "Set the default artist for /play" }

func (c *SetupCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "artist",
				Description: "Default artist",
				Required:    true,
			},
		},
	}
}

func (c *SetupCommand) Run(ctx any) error {
	return c.run(ctx, c.Name(), false, c.execute)
}

func (c *SetupCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	artist := strings.TrimSpace(req.String("artist"))
	if artist == "" {
		return infoEmbed("Give an artist name."), nil
	}
	if err := c.deps.Settings.SetDefaultArtist(req.GuildID, artist); err != nil {
		return nil, fmt.Errorf("save default artist: %w", err)
	}
	req.session(c.deps).SetDefaultArtist(artist)

	return infoEmbed(fmt.Sprintf("Default artist set to **%s**.", artist)), nil
}
