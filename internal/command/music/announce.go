package music

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/music/session"
)

// SendFunc posts an embed to a text channel.
type SendFunc func(channelID string, embed *discordgo.MessageEmbed) error

// Announce posts the changes a session makes on its own (a track ending or
// failing) to the text channel playback was started from. Changes caused by a
// command are already answered by that command. It returns when the session
// terminates.
func Announce(s *session.Session, send SendFunc) {
	for ev := range s.Statuses() {
		if !ev.Automatic {
			continue
		}
		channelID := s.TextChannelID()
		if channelID == "" {
			continue
		}
		if err := send(channelID, statusEmbed(ev)); err != nil {
			log.Warn().Err(err).Str("guild", s.GuildID()).Str("channel", channelID).Msg("[Music] Failed to announce status")
		}
	}
}
