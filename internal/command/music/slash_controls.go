package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type SkipCommand struct{ base }

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip to the next track" }
func (c *SkipCommand) RequiresDJ() bool    { return true }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SkipCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *SkipCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	s := req.session(c.deps)
	if err := s.Skip(); err != nil {
		return nil, err
	}
	if next := s.NowPlaying(); next != nil {
		return infoEmbed("⏭ Skipped. Now playing " + trackLink(next)), nil
	}
	return infoEmbed("⏭ Skipped. The queue is empty."), nil
}

type PauseCommand struct{ base }

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause playback" }
func (c *PauseCommand) RequiresDJ() bool    { return true }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *PauseCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *PauseCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	if err := req.session(c.deps).Pause(); err != nil {
		return nil, err
	}
	return infoEmbed("⏸ Paused."), nil
}

type ResumeCommand struct{ base }

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume playback" }
func (c *ResumeCommand) RequiresDJ() bool    { return true }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *ResumeCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *ResumeCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	if err := req.session(c.deps).Resume(); err != nil {
		return nil, err
	}
	return infoEmbed("▶️ Resumed."), nil
}

type ClearQueueCommand struct{ base }

func (c *ClearQueueCommand) Name() string        { return "clearqueue" }
func (c *ClearQueueCommand) Description() string { return "Remove every upcoming track" }
func (c *ClearQueueCommand) RequiresDJ() bool    { return true }

func (c *ClearQueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *ClearQueueCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *ClearQueueCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	n := req.session(c.deps).ClearQueue()
	return infoEmbed(fmt.Sprintf("🧹 Removed %d track(s) from the queue.", n)), nil
}

type ShuffleCommand struct{ base }

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the queue" }
func (c *ShuffleCommand) RequiresDJ() bool    { return true }

func (c *ShuffleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *ShuffleCommand) Run(ctx any) error { return c.run(ctx, c.Name(), false, c.execute) }

func (c *ShuffleCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	s := req.session(c.deps)
	if err := s.Shuffle(); err != nil {
		return nil, err
	}
	return infoEmbed(fmt.Sprintf("🔀 Shuffled %d track(s).", len(s.Queue()))), nil
}
