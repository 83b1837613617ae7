package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/command"
	"guild-jukebox/pkg/cmd"
)

// registerCommands syncs slash commands for a guild with Discord:
// deletes obsolete ones, creates/updates commands whose definition has changed.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}

	cache := hashCache{dir: b.cfg.CommandCacheDir}
	local := buildCommandDefinitions(b.cmds)
	hashes := cache.load(guildID)

	obsolete := obsoleteCommands(remote, local)
	for _, rc := range obsolete {
		log.Info().Str("guild", guildID).Str("command", rc.Name).Msg("[Discord] Deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", rc.Name).Msg("[Discord] Failed to delete command")
			continue
		}
		delete(hashes, rc.Name)
	}

	changed, fresh := changedCommands(local, hashes, remote)
	if len(changed) > 0 {
		log.Info().Str("guild", guildID).Int("count", len(changed)).Msg("[Discord] Registering changed commands")
	}
	for _, d := range changed {
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", d.Name).Msg("[Discord] Failed to register command")
			continue
		}
		hashes[d.Name] = fresh[d.Name]
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}

	return cache.save(guildID, hashes)
}

// buildCommandDefinitions returns the definitions of every slash command in reg.
func buildCommandDefinitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		if def := command.Definition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// obsoleteCommands returns the remote commands no local definition matches.
func obsoleteCommands(remote, local []*discordgo.ApplicationCommand) []*discordgo.ApplicationCommand {
	names := make(map[string]struct{}, len(local))
	for _, d := range local {
		names[d.Name] = struct{}{}
	}
	var out []*discordgo.ApplicationCommand
	for _, rc := range remote {
		if _, ok := names[rc.Name]; !ok {
			out = append(out, rc)
		}
	}
	return out
}

// changedCommands returns the definitions whose hash differs from the cache
// or that Discord does not know at all, plus the fresh hash of every definition.
func changedCommands(local []*discordgo.ApplicationCommand, cached map[string]string, remote []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, map[string]string) {
	known := make(map[string]struct{}, len(remote))
	for _, rc := range remote {
		known[rc.Name] = struct{}{}
	}

	fresh := make(map[string]string, len(local))
	var changed []*discordgo.ApplicationCommand
	for _, d := range local {
		h := hashCommand(d)
		fresh[d.Name] = h
		_, registered := known[d.Name]
		if cached[d.Name] != h || !registered {
			changed = append(changed, d)
		}
	}
	return changed, fresh
}

// appID returns the bot's application ID, fetching from Discord if not cached in State.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// hashCache remembers per guild which definitions were last registered.
type hashCache struct {
	dir string
}

func (c hashCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

func (c hashCache) load(guildID string) map[string]string {
	out := make(map[string]string)
	if data, err := os.ReadFile(c.path(guildID)); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func (c hashCache) save(guildID string, hashes map[string]string) error {
	path := c.path(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create command cache dir: %w", err)
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// hashCommand returns a deterministic SHA-1 of a command's stable fields.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	out := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if o.MinValue != nil {
			entry["min"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max"] = o.MaxValue
		}
		if o.MaxLength != 0 {
			entry["max_length"] = o.MaxLength
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]interface{}{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
