//go:build linux

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/graph/encoding/dot"

	"github.com/itsethra/uesdk/internal/config"
	"github.com/itsethra/uesdk/internal/procattach"
	"github.com/itsethra/uesdk/internal/rproc"
	"github.com/itsethra/uesdk/internal/sdk"
)

type dumpFlags struct {
	pid         int
	imageBase   uint64
	namesOff    uint64
	objectsOff  uint64
	configPath  string
	merge       []string
	allowCycles bool
	dotPath     string
}

func newDumpCommand() *cobra.Command {
	f := &dumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Attach to a process and reconstruct its reflected type graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(f)
		},
	}
	cmd.Flags().IntVar(&f.pid, "pid", 0, "process id to attach to")
	cmd.Flags().Uint64Var(&f.imageBase, "image-base", 0, "base address the --names/--objects offsets are resolved against")
	cmd.Flags().Uint64Var(&f.namesOff, "names", 0, "name pool offset from image-base")
	cmd.Flags().Uint64Var(&f.objectsOff, "objects", 0, "object array offset from image-base")
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a TOML offset override file")
	cmd.Flags().StringArrayVar(&f.merge, "merge", nil, "repeatable target:consumer package merge directive")
	cmd.Flags().BoolVar(&f.allowCycles, "allow-cycles", false, "skip package dependency cycle elimination")
	cmd.Flags().StringVar(&f.dotPath, "dot", "", "write the package dependency graph as Graphviz DOT to this path")
	cmd.MarkFlagRequired("pid")
	return cmd
}

func runDump(f *dumpFlags) error {
	if f.namesOff == 0 || f.objectsOff == 0 {
		return errors.New("--names and --objects are required")
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	mergeMap, err := config.ParseMergeMap(f.merge)
	if err != nil {
		return err
	}

	proc, err := procattach.Attach(f.pid)
	if err != nil {
		return err
	}
	defer func() {
		if err := proc.Detach(); err != nil {
			log.Warn().Err(err).Msg("failed to detach cleanly")
		}
	}()

	opts := sdk.Options{
		ImageBase:         rproc.Address(f.imageBase),
		NamesBaseOffset:   int64(f.namesOff),
		ObjectsBaseOffset: int64(f.objectsOff),
		MergeMap:          mergeMap,
		AllowCycles:       f.allowCycles,
	}
	result, err := sdk.Core(proc, cfg, opts)
	if err != nil {
		return errors.Wrap(err, "reconstructing type graph")
	}

	stats := result.SDK.Stats()
	log.Info().
		Int("objects_read", result.ObjectsRead).
		Int("orphans_skipped", result.Orphans).
		Int("packages", stats.Packages).
		Int("structs", stats.Structs).
		Int("classes", stats.Classes).
		Int("enums", stats.Enums).
		Int("functions", stats.Functions).
		Msg("reconstruction complete")

	for _, c := range result.Cycles {
		log.Warn().
			Strs("chain", c.Chain).
			Str("consumer", c.Consumer).
			Msg("eliminated package dependency cycle")
	}

	if f.dotPath != "" {
		if err := writeDot(result.SDK.Graph(), f.dotPath); err != nil {
			return err
		}
	}
	return nil
}

func writeDot(pg *sdk.PackageGraph, path string) error {
	data, err := dot.Marshal(pg.Graph(), "uesdk", "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling dependency graph to DOT")
	}
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
