package music

import (
	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
)

type QueueCommand struct{ base }

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the upcoming tracks" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *QueueCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *QueueCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	return queueEmbed(req.session(c.deps).Snapshot()), nil
}

type NowPlayingCommand struct{ base }

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return "Show the current track" }

func (c *NowPlayingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *NowPlayingCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *NowPlayingCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	snap := req.session(c.deps).Snapshot()
	if snap.NowPlaying == nil {
		return nil, session.ErrNothingPlaying
	}
	return nowPlayingEmbed(snap), nil
}
