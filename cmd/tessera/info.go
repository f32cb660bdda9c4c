package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardar/tessera/pkg/tessera"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List the installed language packs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := tessera.DefaultBackend()
		langs, err := backend.Languages(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to list languages: %w", err)
		}
		for _, l := range langs {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// no configuration needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "tessera %s (commit %s)\n", Version, Commit)
		backend := tessera.DefaultBackend()
		s, err := tessera.New(nil, tessera.Options{Backend: backend})
		if err != nil {
			fmt.Fprintf(w, "engine:  %s unavailable (%v)\n", backend.Name(), err)
			return
		}
		defer s.Close()
		fmt.Fprintf(w, "engine:  %s %s\n", backend.Name(), s.Version())
	},
}
