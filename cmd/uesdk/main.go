// Command uesdk attaches to a running process, reconstructs its
// reflected type graph, and reports it. It is the external
// collaborator described in spec.md §6: everything here is CLI
// parsing, config loading, process attachment, and logging around the
// pure internal/sdk core.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "uesdk",
		Short: "Reconstruct a reflected object graph from a running process",
	}
	root.AddCommand(newDumpCommand())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("uesdk failed")
	}
}
