package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
)

type VolumeCommand struct{ base }

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume" }
func (c *VolumeCommand) RequiresDJ() bool    { return true }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minLevel := 1.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "level",
				Description: "Volume from 1 to 100",
				Required:    true,
				MinValue:    &minLevel,
				MaxValue:    100,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *VolumeCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	level, ok := req.Int("level")
	if !ok {
		return nil, session.ErrInvalidVolume
	}
	if err := req.session(c.deps).SetVolume(int(level)); err != nil {
		return nil, err
	}
	return infoEmbed(fmt.Sprintf("🔊 Volume set to %d%%.", level)), nil
}

type LoopCommand struct{ base }

func (c *LoopCommand) Name() string        { return "loop" }
func (c *LoopCommand) Description() string { return "Repeat the current song or the whole queue" }
func (c *LoopCommand) RequiresDJ() bool    { return true }

func (c *LoopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "mode",
				Description: "Loop mode",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Off", Value: string(session.LoopOff)},
					{Name: "Song", Value: string(session.LoopSong)},
					{Name: "Queue", Value: string(session.LoopQueue)},
				},
			},
		},
	}
}

func (c *LoopCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *LoopCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	s := req.session(c.deps)
	if err := s.SetLoop(req.String("mode")); err != nil {
		return nil, err
	}
	return infoEmbed(fmt.Sprintf("🔁 Loop mode: **%s**.", s.Loop())), nil
}

type SeekCommand struct{ base }

func (c *SeekCommand) Name() string        { return "seek" }
func (c *SeekCommand) Description() string { return "Jump to a position in the current track" }
func (c *SeekCommand) RequiresDJ() bool    { return true }

func (c *SeekCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "time",
				Description: "Position as mm:ss",
				Required:    true,
			},
		},
	}
}

func (c *SeekCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *SeekCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	ts := req.String("time")
	if err := req.session(c.deps).Seek(ts); err != nil {
		return nil, err
	}
	return infoEmbed(fmt.Sprintf("⏩ Jumped to %s.", ts)), nil
}
