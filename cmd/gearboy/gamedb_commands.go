package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gearboy/internal/config"
	"gearboy/internal/gamedb"
	"gearboy/internal/romfile"
	"gearboy/internal/services"
)

// searcher is implemented by in-memory title tables.
type searcher interface {
	Search(query string) []gamedb.Game
	Suggest(query string, limit int) []gamedb.Match
}

func newGameDBCommand(ctx *commandContext) *cobra.Command {
	gamedbCmd := &cobra.Command{
		Use:   "gamedb",
		Short: "Title database utilities",
	}

	gamedbCmd.AddCommand(newGameDBBuildCommand(ctx))
	gamedbCmd.AddCommand(newGameDBLookupCommand(ctx))
	gamedbCmd.AddCommand(newGameDBSearchCommand(ctx))

	return gamedbCmd
}

func newGameDBBuildCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "build <dat>...",
		Short: "Convert No-Intro DAT files into a title database",
		Long: "Convert clrmamepro/No-Intro DAT files into a title database. Paths ending in\n" +
			".db or .sqlite produce a SQLite index; anything else produces the JSON\n" +
			"format. Without --out the JSON is written to stdout.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var games []gamedb.Game
			for _, arg := range args {
				parsed, err := parseDATFile(arg)
				if err != nil {
					return err
				}
				games = append(games, parsed...)
			}
			deduped := gamedb.New(games).Games()

			target := strings.TrimSpace(outPath)
			if target == "" || target == "-" {
				return gamedb.WriteJSON(cmd.OutOrStdout(), deduped)
			}
			target, err := config.ExpandPath(target)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			if gamedb.IsIndexPath(target) {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				index, err := gamedb.OpenIndex(target, logger)
				if err != nil {
					return err
				}
				defer index.Close()
				inserted, err := index.Import(cmd.Context(), deduped)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d titles (%d new) into %s\n", len(deduped), inserted, target)
				return nil
			}

			if err := writeGameFile(target, deduped); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d titles to %s\n", len(deduped), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (.json, .db or .sqlite); stdout when empty")
	return cmd
}

func newGameDBLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <crc>",
		Short: "Resolve a CRC32 checksum to a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := ctx.ensureTitles()
			if err != nil {
				return err
			}
			crc := romfile.NormalizeChecksum(args[0])
			title := titles.TitleFor(crc)
			if ctx.jsonFlag {
				return writeJSON(cmd, gamedb.Game{Title: title, CRC: crc})
			}
			if title == "" {
				return services.Wrap(services.ErrNotFound, "gamedb", "lookup", crc, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), title)
			return nil
		},
	}
}

func newGameDBSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find titles by name",
		Long: "Find titles containing the query. When nothing contains it, the closest\n" +
			"titles by word overlap are suggested instead.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := ctx.ensureTitles()
			if err != nil {
				return err
			}
			s, ok := titles.(searcher)
			if !ok {
				return errors.New("search needs a JSON or bundled title database; SQLite indexes support lookup only")
			}
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if games := s.Search(query); len(games) > 0 {
				if len(games) > limit {
					games = games[:limit]
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, games)
				}
				for _, g := range games {
					fmt.Fprintf(out, "%s  %s\n", g.CRC, g.Title)
				}
				return nil
			}

			matches := s.Suggest(query, limit)
			if ctx.jsonFlag {
				if matches == nil {
					matches = []gamedb.Match{}
				}
				return writeJSON(cmd, matches)
			}
			if len(matches) == 0 {
				fmt.Fprintf(out, "No titles match %q\n", query)
				return nil
			}
			fmt.Fprintln(out, "No exact matches; closest titles:")
			for _, m := range matches {
				fmt.Fprintf(out, "%s  %s (%.0f%%)\n", m.CRC, m.Title, m.Score*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	return cmd
}

func parseDATFile(path string) ([]gamedb.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dat: %w", err)
	}
	defer f.Close()
	games, err := gamedb.ParseDAT(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return games, nil
}

func writeGameFile(path string, games []gamedb.Game) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := writeAndClose(tmp, games); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeAndClose(f *os.File, games []gamedb.Game) error {
	if err := gamedb.WriteJSON(f, games); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode titles: %w", err)
	}
	return f.Close()
}
