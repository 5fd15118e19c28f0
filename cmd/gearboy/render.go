package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"

	"gearboy/internal/catalog"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const favoriteMark = "★"

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func romTable(roms []catalog.Rom, colorize bool) string {
	rows := make([][]string, 0, len(roms))
	for _, rom := range roms {
		fav := ""
		if rom.IsFavorite {
			fav = paint(favoriteMark, ansiYellow, colorize)
		}
		rows = append(rows, []string{
			strconv.Itoa(rom.ID),
			rom.DisplayName(),
			rom.File,
			rom.Checksum,
			fav,
			formatPlayed(rom.UsedOn),
			yesNo(rom.Image != ""),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "File", "CRC", "Fav", "Last Played", "Art"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignCenter, alignLeft, alignLeft},
		colorize,
	)
}

func formatPlayed(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func writeRomDetail(w io.Writer, rom catalog.Rom) {
	fmt.Fprintf(w, "ID:          %d\n", rom.ID)
	fmt.Fprintf(w, "Title:       %s\n", displayOrDash(rom.Title))
	fmt.Fprintf(w, "File:        %s\n", rom.File)
	fmt.Fprintf(w, "CRC32:       %s\n", rom.Checksum)
	fmt.Fprintf(w, "Favorite:    %s\n", yesNo(rom.IsFavorite))
	fmt.Fprintf(w, "Last played: %s\n", formatPlayed(rom.UsedOn))
	fmt.Fprintf(w, "Box art:     %s\n", displayOrDash(rom.Image))
}

func eventLine(evt catalog.Event, colorize bool) string {
	color := ""
	switch evt.Kind {
	case catalog.EventAdded:
		color = ansiGreen
	case catalog.EventRemoved:
		color = ansiRed
	case catalog.EventUpdated:
		color = ansiYellow
	}
	return fmt.Sprintf("%s %s #%d %s",
		evt.Timestamp.Local().Format("15:04:05"),
		paint(fmt.Sprintf("%-7s", evt.Kind), color, colorize),
		evt.Rom.ID,
		evt.Rom.DisplayName(),
	)
}

func displayOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
