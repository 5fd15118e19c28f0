package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gearboy/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var viewFlag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cataloged ROMs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := catalog.ParseView(viewFlag)
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			roms := store.View(view, ctx.config.RecentWindow())
			if ctx.jsonFlag {
				if roms == nil {
					roms = []catalog.Rom{}
				}
				return writeJSON(cmd, roms)
			}

			out := cmd.OutOrStdout()
			if len(roms) == 0 {
				fmt.Fprintf(out, "No ROMs in view %q\n", view)
				return nil
			}
			fmt.Fprintln(out, romTable(roms, shouldColorize(out)))
			fmt.Fprintf(out, "%d of %d ROMs\n", len(roms), store.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&viewFlag, "view", string(catalog.ViewAll), "Subset to show: all, favorites, or recents")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, rom)
			}
			writeRomDetail(cmd.OutOrStdout(), rom)
			return nil
		},
	}
}

func newFavoriteCommand(ctx *commandContext) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark a ROM as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			updated, err := ctx.store.SetFavorite(rom.ID, !off)
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, updated)
			}
			if updated.IsFavorite {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s added to favorites\n", favoriteMark, updated.DisplayName())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites\n", updated.DisplayName())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Remove the favorite mark instead")
	return cmd
}

func newPlayedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "played <id>",
		Short: "Record that a ROM was just played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			updated, err := ctx.store.MarkUsed(rom.ID, time.Time{})
			if err != nil {
				return err
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s last played %s\n", updated.DisplayName(), formatPlayed(updated.UsedOn))
			return nil
		},
	}
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change the display title of a ROM",
		Long: "Change the display title of a ROM. Box art is looked up again for the new\n" +
			"title; an empty title falls back to the file name.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			images, err := ctx.ensureImages()
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == rom.Title {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", rom.DisplayName())
				return nil
			}
			rom.Title = title
			rom.Image = ""
			updated, ok, err := ctx.store.Update(rom)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: id %d", catalog.ErrNotFound, rom.ID)
			}
			images.EnsureImage(cmd.Context(), updated, true)
			if current, ok := ctx.store.ByID(updated.ID); ok {
				updated = current
			}
			if ctx.jsonFlag {
				return writeJSON(cmd, updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d renamed to %s\n", updated.ID, updated.DisplayName())
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var deleteFile bool

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a ROM from the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			removed, err := ctx.store.Delete(rom)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%w: id %d", catalog.ErrNotFound, rom.ID)
			}
			if deleteFile {
				path := filepath.Join(ctx.store.DataDir(), filepath.FromSlash(rom.File))
				if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("delete rom file: %w", err)
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed #%d %s\n", rom.ID, rom.DisplayName())
			if !deleteFile {
				fmt.Fprintln(out, "The ROM file was kept; the next sync will catalog it again.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteFile, "delete-file", false, "Also delete the ROM file from the data directory")
	return cmd
}

func newBoxArtCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "boxart <id>",
		Short: "Fetch box art for a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := ctx.lookupRom(args[0])
			if err != nil {
				return err
			}
			images, err := ctx.ensureImages()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(rom.Title) == "" {
				fmt.Fprintf(out, "%s has no known title; box art is looked up by title\n", rom.File)
				return nil
			}
			if !images.EnsureImage(cmd.Context(), rom, true) {
				fmt.Fprintf(out, "No box art available for %s\n", rom.Title)
				return nil
			}
			if current, ok := ctx.store.ByID(rom.ID); ok {
				rom = current
			}
			fmt.Fprintf(out, "Box art for %s: %s\n", rom.Title, images.Path(rom.Image))
			return nil
		},
	}
}
