package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/sources"
)

const queuePageSize = 10

func errorEmbed(err error) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎵 Error",
		Description: Describe(err),
	}
}

func infoEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: description}
}

// trackLink renders a track as a markdown link when it has a title.
func trackLink(t *sources.TrackInfo) string {
	if t == nil {
		return "nothing"
	}
	if t.Title == "" || t.Title == t.URL {
		return t.URL
	}
	return fmt.Sprintf("[%s](%s)", t.Title, t.URL)
}

func statusEmbed(ev session.StatusEvent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s %s", ev.Status.StringEmoji(), ev.Status),
	}
	switch {
	case ev.Status == session.StatusError && ev.Track != nil:
		embed.Description = fmt.Sprintf("Could not play %s, skipping.", trackLink(ev.Track))
	case ev.Track != nil:
		embed.Description = trackLink(ev.Track)
	case ev.Status == session.StatusStopped:
		embed.Description = "The queue is empty."
	}
	return embed
}

// nowPlayingEmbed expects snap.NowPlaying to be set.
func nowPlayingEmbed(snap session.Snapshot) *discordgo.MessageEmbed {
	status := session.StatusPlaying
	if snap.State == session.Paused {
		status = session.StatusPaused
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Now playing", status.StringEmoji()),
		Description: trackLink(snap.NowPlaying),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "State", Value: snap.State.String(), Inline: true},
			{Name: "Loop", Value: string(snap.Loop), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", percent(snap.Volume)), Inline: true},
			{Name: "Up next", Value: fmt.Sprintf("%d track(s)", len(snap.Queue)), Inline: true},
		},
	}
}

func queueEmbed(snap session.Snapshot) *discordgo.MessageEmbed {
	if snap.NowPlaying == nil && len(snap.Queue) == 0 {
		return infoEmbed("The queue is empty.")
	}

	var sb strings.Builder
	if snap.NowPlaying != nil {
		fmt.Fprintf(&sb, "**Now:** %s\n\n", trackLink(snap.NowPlaying))
	}
	for i, t := range snap.Queue {
		if i == queuePageSize {
			fmt.Fprintf(&sb, "…and %d more", len(snap.Queue)-queuePageSize)
			break
		}
		fmt.Fprintf(&sb, "`%d.` %s\n", i+1, trackLink(t))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎶 Queue (%d)", len(snap.Queue)),
		Description: strings.TrimSpace(sb.String()),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Loop: %s", snap.Loop)},
	}
}

func percent(volume float64) int {
	return int(volume*100 + 0.5)
}
