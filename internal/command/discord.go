package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/storage"
	"guild-jukebox/pkg/cmd"
)

// SlashInteractionContext is what the runtime passes to a slash command.
type SlashInteractionContext struct {
	Ctx     context.Context
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta lets middleware read command metadata through wrappers.
type DiscordMeta interface {
	Group() string
	Category() string
	UserPermissions() []int64
}

// DJRestricted marks commands a configured DJ role applies to.
type DJRestricted interface {
	RequiresDJ() bool
}

// DiscordCommand is what individual Discord commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Group() string
	Category() string
	UserPermissions() []int64
	Run(ctx any) error
}

// DiscordAdapter lets a DiscordCommand live in a cmd.Registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Group() string            { return a.Cmd.Group() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) RequiresDJ() bool {
	if dj, ok := a.Cmd.(DJRestricted); ok {
		return dj.RequiresDJ()
	}
	return false
}

func (a *DiscordAdapter) Run(_ context.Context, inv *cmd.Invocation) error {
	return a.Cmd.Run(inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// RegisterCommand wraps discordCmd with mws and adds it to reg.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) error {
	return reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}

// Meta returns the metadata of a possibly wrapped command.
func Meta(c cmd.Command) (DiscordMeta, bool) {
	m, ok := cmd.Root(c).(DiscordMeta)
	return m, ok
}

// RequiresDJ reports whether a possibly wrapped command is DJ restricted.
func RequiresDJ(c cmd.Command) bool {
	dj, ok := cmd.Root(c).(DJRestricted)
	return ok && dj.RequiresDJ()
}

// Definition returns the slash definition of a possibly wrapped command.
func Definition(c cmd.Command) *discordgo.ApplicationCommand {
	sp, ok := cmd.Root(c).(SlashProvider)
	if !ok {
		return nil
	}
	def := sp.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// Options flattens the top-level options of a slash interaction.
func Options(e *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	if e == nil || e.Type != discordgo.InteractionApplicationCommand {
		return out
	}
	for _, opt := range e.ApplicationCommandData().Options {
		out[opt.Name] = opt
	}
	return out
}
