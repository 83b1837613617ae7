package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/sources"
)

const maxLyricsLen = 4000

type LyricsCommand struct{ base }

func (c *LyricsCommand) Name() string        { return "lyrics" }
func (c *LyricsCommand) Description() string { return "Show lyrics for the current track" }

func (c *LyricsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *LyricsCommand) Run(ctx any) error { return c.run(ctx, c.Name(), true, c.execute) }

func (c *LyricsCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	if c.deps.Lyrics == nil {
		return nil, errUnavailable
	}
	track := req.session(c.deps).NowPlaying()
	if track == nil {
		return nil, session.ErrNothingPlaying
	}

	text, err := c.deps.Lyrics.Lyrics(req.Ctx, track)
	if err != nil {
		return nil, fmt.Errorf("lyrics for %s: %w", track.URL, err)
	}
	if r := []rune(text); len(r) > maxLyricsLen {
		text = string(r[:maxLyricsLen]) + "…"
	}
	return &discordgo.MessageEmbed{Title: "📝 " + track.Label(), Description: text}, nil
}

type SaveQueueCommand struct{ base }

func (c *SaveQueueCommand) Name() string        { return "savequeue" }
func (c *SaveQueueCommand) Description() string { return "Save the current track and queue" }

func (c *SaveQueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SaveQueueCommand) Run(ctx any) error { return c.run(ctx, c.Name(), true, c.execute) }

func (c *SaveQueueCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	if c.deps.Queues == nil {
		return nil, errUnavailable
	}
	snap := req.session(c.deps).Snapshot()
	if snap.NowPlaying == nil {
		return nil, session.ErrNothingPlaying
	}

	tracks := append([]*sources.TrackInfo{snap.NowPlaying}, snap.Queue...)
	if err := c.deps.Queues.Save(req.Ctx, req.GuildID, tracks); err != nil {
		return nil, fmt.Errorf("save queue: %w", err)
	}
	return infoEmbed(fmt.Sprintf("💾 Saved %d track(s).", len(tracks))), nil
}

type LoadQueueCommand struct{ base }

func (c *LoadQueueCommand) Name() string        { return "loadqueue" }
func (c *LoadQueueCommand) Description() string { return "Replace the queue with the saved one" }
func (c *LoadQueueCommand) RequiresDJ() bool    { return true }

func (c *LoadQueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *LoadQueueCommand) Run(ctx any) error { return c.run(ctx, c.Name(), true, c.execute) }

func (c *LoadQueueCommand) execute(req *Request) (*discordgo.MessageEmbed, error) {
	if c.deps.Queues == nil {
		return nil, errUnavailable
	}
	channelID := c.deps.Voice.UserVoiceChannel(req.GuildID, req.UserID)
	if channelID == "" {
		return nil, session.ErrNoVoiceChannel
	}

	tracks, err := c.deps.Queues.Load(req.Ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	res, err := req.session(c.deps).PlayTracks(req.Ctx, session.PlayRequest{
		ChannelID:     channelID,
		TextChannelID: req.TextChannelID,
	}, tracks)
	if err != nil {
		return nil, err
	}
	return infoEmbed(fmt.Sprintf("📂 Loaded %d track(s). Now playing %s", res.Queued+1, trackLink(res.NowPlaying))), nil
}
