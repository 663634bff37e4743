// Package main is the pathbuilder command: an HTTP server hosting editing
// sessions, plus offline tools to inspect import files and compact edit
// histories.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/config"
	"github.com/pathbuilder/core/internal/logging"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	bad    = color.New(color.FgRed)
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "pathbuilder",
		Short:         "Weighted location graph editor server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		logger, err := logging.New(cfg.Environment, cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return cfg, logger, nil
	}

	root.AddCommand(
		serveCmd(load),
		inspectCmd(),
		compactCmd(load),
	)
	return root
}

type loader func() (*config.Config, *zap.Logger, error)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "pathbuilder: %v\n", err)
		os.Exit(1)
	}
}
