package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathbuilder/core/internal/canvas"
	"github.com/pathbuilder/core/internal/parser"
)

// compactCmd replays recorded input events over a graph and prints the
// compacted diff they produce.
func compactCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <data.json> <events.jsonl>",
		Short: "Replay input events on a graph and print the compacted change diff",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			store := canvas.NewStore(canvas.WithLogger(logger), canvas.WithParams(cfg.Canvas.Params()))
			res, err := store.ImportJSON(data)
			if err != nil {
				return err
			}

			n, err := replay(store, args[1], logger)
			if err != nil {
				return err
			}
			subtle.Fprintf(cmd.ErrOrStderr(), "loaded %d of %d records, replayed %d events, %d changes\n",
				res.Loaded, res.Total, n, store.Log().UndoCount())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.ExportChanges())
		},
	}
}

// replay dispatches one JSON event per line. Blank lines are skipped; a line
// that does not parse stops the replay.
func replay(store *canvas.Store, path string, logger *zap.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev canvas.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return n, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := parser.ValidateStruct(&ev); err != nil {
			return n, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if _, err := store.Dispatch(ev); err != nil {
			return n, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		logger.Debug("replayed event", zap.Int("line", line), zap.String("type", ev.Type))
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
