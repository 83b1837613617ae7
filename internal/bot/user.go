package bot

import "github.com/bwmarrin/discordgo"

// InteractionUser returns the invoking user, whether the interaction came
// from a guild (Member) or a DM (User).
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
