// Package cli defines the Cobra commands of the jukebox admin tool. It edits
// the same settings file the bot reads, so run it while the bot is stopped.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guild-jukebox/internal/config"
	"guild-jukebox/internal/storage"
)

// NewRootCmd builds the command tree. storagePath overrides STORAGE_PATH when set.
func NewRootCmd() *cobra.Command {
	var storagePath string

	root := &cobra.Command{
		Use:           "jukebox-cli",
		Short:         "Inspect and edit stored guild settings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&storagePath, "storage", "", "Path to the datastore file (default: $STORAGE_PATH)")

	open := func() (*storage.Storage, error) {
		path := storagePath
		if path == "" {
			var err error
			if path, err = config.Storage(); err != nil {
				return nil, err
			}
		}
		store, err := storage.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return store, nil
	}

	root.AddCommand(newShowCmd(open))
	root.AddCommand(newSetCmd(open))
	root.AddCommand(newHistoryCmd(open))
	return root
}

type opener func() (*storage.Storage, error)

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
