package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"guild-jukebox/internal/storage"
)

func newShowCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <guild-id>",
		Short: "Print a guild's stored settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			guildID := args[0]
			artist, err := store.DefaultArtist(guildID)
			if err != nil {
				return err
			}
			dj, err := store.DJRole(guildID)
			if err != nil {
				return err
			}
			prefix, err := store.Prefix(guildID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "guild:          %s\n", guildID)
			fmt.Fprintf(out, "default artist: %s\n", orUnset(artist))
			fmt.Fprintf(out, "dj role:        %s\n", orUnset(dj))
			fmt.Fprintf(out, "prefix:         %s\n", orUnset(prefix))
			return nil
		},
	}
}

func newSetCmd(open opener) *cobra.Command {
	var artist, dj, prefix string

	cmd := &cobra.Command{
		Use:   "set <guild-id>",
		Short: "Change a guild's stored settings",
		Long: `Change a guild's stored settings. Only flags that are given are written;
pass an empty value (--dj "") to clear a setting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("artist") && !flags.Changed("dj") && !flags.Changed("prefix") {
				return fmt.Errorf("nothing to set: use --artist, --dj or --prefix")
			}
			if flags.Changed("prefix") && (len(prefix) > 5 || strings.ContainsAny(prefix, " \t")) {
				return fmt.Errorf("prefix must be at most 5 characters without spaces")
			}

			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			guildID := args[0]
			updates := []struct {
				flag string
				set  func(string, string) error
				val  string
			}{
				{"artist", store.SetDefaultArtist, artist},
				{"dj", store.SetDJRole, dj},
				{"prefix", store.SetPrefix, prefix},
			}
			for _, u := range updates {
				if !flags.Changed(u.flag) {
					continue
				}
				if err := u.set(guildID, strings.TrimSpace(u.val)); err != nil {
					return fmt.Errorf("setting %s: %w", u.flag, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", u.flag, orUnset(strings.TrimSpace(u.val)))
			}
			return store.Flush()
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Default artist for play without arguments")
	cmd.Flags().StringVar(&dj, "dj", "", "DJ role id")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Command prefix")
	return cmd
}

func newHistoryCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "history <guild-id>",
		Short: "Print the commands recently used in a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.FetchCommandHistory(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no command history")
				return nil
			}
			for _, r := range records {
				fmt.Fprintln(cmd.OutOrStdout(), formatRecord(r))
			}
			return nil
		},
	}
}

func formatRecord(r storage.CommandHistoryRecord) string {
	line := fmt.Sprintf("%s  %-15s  #%-12s  /%s", r.Datetime.Format("2006-01-02 15:04:05"), r.Username, r.ChannelName, r.Command)
	if r.Param != "" {
		line += " " + r.Param
	}
	return line
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
