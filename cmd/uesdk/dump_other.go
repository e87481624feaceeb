//go:build !linux

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Attach to a process and reconstruct its reflected type graph (linux only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("uesdk dump requires ptrace and is only supported on linux")
		},
	}
}
