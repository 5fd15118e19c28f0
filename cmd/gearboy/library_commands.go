package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gearboy/internal/catalog"
	"gearboy/internal/library"
)

type syncOutput struct {
	ScanID  string        `json:"scanId"`
	Added   []catalog.Rom `json:"added"`
	Removed []catalog.Rom `json:"removed"`
	Skipped []string      `json:"skipped"`
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Copy ROM files into the library and catalog them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			imported := make([]catalog.Rom, 0, len(args))
			var errs []error
			for _, arg := range args {
				rom, err := manager.ImportFile(cmd.Context(), arg)
				if err != nil {
					if errors.Is(err, catalog.ErrPersist) {
						return err
					}
					errs = append(errs, fmt.Errorf("import %s: %w", arg, err))
					continue
				}
				imported = append(imported, rom)
				if !ctx.jsonFlag {
					fmt.Fprintf(out, "Imported %s as #%d (%s)\n", rom.File, rom.ID, displayOrDash(rom.Title))
				}
			}
			// Background box-art downloads finish before the process exits.
			ctx.images.Wait()
			if ctx.jsonFlag {
				if err := writeJSON(cmd, imported); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the catalog with the ROM folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			res, err := manager.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, newSyncOutput(res))
			}
			writeSyncSummary(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the catalog in sync while files change",
		Long: "Reconcile once, then watch the ROM folder and reconcile again whenever ROM\n" +
			"files are added or removed. Catalog changes are printed as they happen.\n" +
			"Stop with Ctrl-C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			out := cmd.OutOrStdout()

			res, err := manager.Reconcile(runCtx)
			if err != nil {
				return err
			}
			if !ctx.jsonFlag {
				writeSyncSummary(out, res)
			}

			feed := ctx.store.Feed()
			since := feed.Sequence()
			colorize := shouldColorize(out)
			return followWhile(runCtx, manager.Watch, func(followCtx context.Context) {
				for {
					events, _, err := feed.Fetch(followCtx, since, 64, true)
					if err != nil {
						return
					}
					for _, evt := range events {
						if ctx.jsonFlag {
							_ = writeJSON(cmd, evt)
						} else {
							fmt.Fprintln(out, eventLine(evt, colorize))
						}
						since = evt.Sequence
					}
				}
			})
		},
	}
}

// followWhile runs follow alongside watch and stops it once watch returns,
// whether watch ended through ctx, a closed watcher, or an error.
func followWhile(ctx context.Context, watch func(context.Context) error, follow func(context.Context)) error {
	followCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		follow(followCtx)
	}()

	err := watch(ctx)
	cancel()
	<-done
	return err
}

func newSyncOutput(res library.Result) syncOutput {
	out := syncOutput{
		ScanID:  res.ScanID,
		Added:   res.Added,
		Removed: res.Removed,
		Skipped: res.Skipped,
	}
	if out.Added == nil {
		out.Added = []catalog.Rom{}
	}
	if out.Removed == nil {
		out.Removed = []catalog.Rom{}
	}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	return out
}

func writeSyncSummary(w io.Writer, res library.Result) {
	for _, rom := range res.Added {
		fmt.Fprintf(w, "+ #%d %s\n", rom.ID, rom.DisplayName())
	}
	for _, rom := range res.Removed {
		fmt.Fprintf(w, "- #%d %s\n", rom.ID, rom.DisplayName())
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(w, "! %s (unreadable)\n", name)
	}
	if !res.Changed() && len(res.Skipped) == 0 {
		fmt.Fprintln(w, "Catalog already up to date")
		return
	}
	fmt.Fprintf(w, "%d added, %d removed\n", len(res.Added), len(res.Removed))
}
