package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
)

type PlayCommand struct{ base }

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play an artist or song, replacing the queue" }
func (c *PlayCommand) RequiresDJ() bool    { return true }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "artist",
				Description: "Artist, song or YouTube link (defaults to the server's artist)",
			},
		},
	}
}

func (c *PlayCommand) Run(ctx any) error {
	return c.run(ctx, c.Name(), true, c.execute)
}

func (c *PlayCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	channelID := c.deps.Voice.UserVoiceChannel(req.GuildID, req.UserID)
	if channelID == "" {
		return nil, session.ErrNoVoiceChannel
	}

	res, err := req.session(c.deps).Play(req.Ctx, session.PlayRequest{
		Query:         req.String("artist"),
		ChannelID:     channelID,
		TextChannelID: req.TextChannelID,
	})
	if err != nil {
		return nil, err
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Now playing", session.StatusPlaying.StringEmoji()),
		Description: trackLink(res.NowPlaying),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d track(s) queued", res.Queued)},
	}, nil
}
