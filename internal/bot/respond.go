// Package bot holds the Discord reply helpers shared by commands, middleware
// and the runtime, so none of them needs to import the runtime package.
package bot

import (
	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0x1db954

// RespondEmbed sends a public embed response to an interaction.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{withColor(embed)}},
	})
}

// RespondEmbedEphemeral sends an embed only the caller can see.
func RespondEmbedEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{withColor(embed)},
		},
	})
}

// RespondDeferred acknowledges an interaction that needs more than Discord's
// three second reply window. The answer follows with a followup message.
func RespondDeferred(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func FollowupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{withColor(embed)},
	})
	return err
}

// MessageEmbed posts an embed to a channel outside of any interaction.
func MessageEmbed(s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := s.ChannelMessageSendEmbed(channelID, withColor(embed))
	return err
}

func withColor(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed != nil && embed.Color == 0 {
		embed.Color = EmbedColor
	}
	return embed
}
