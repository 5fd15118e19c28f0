package gamedb

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gearboy/internal/romfile"
)

// ParseDAT reads a clrmamepro-format DAT (as published by No-Intro) and
// returns one Game per game block that names a title and a rom crc.
//
//	game (
//		name "Tetris (World) (Rev 1)"
//		rom ( name "Tetris (World) (Rev 1).gb" size 65536 crc 46DF91AD md5 ... )
//	)
//
// The header block and games without a crc are skipped.
func ParseDAT(r io.Reader) ([]Game, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		games   []Game
		inGame  bool
		current Game
		lineNo  int
		startAt int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "game (":
			if inGame {
				return nil, fmt.Errorf("dat line %d: game block opened inside block started at line %d", lineNo, startAt)
			}
			inGame = true
			startAt = lineNo
			current = Game{}
		case line == ")":
			if inGame {
				if current.Title != "" && current.CRC != "" {
					games = append(games, current)
				}
				inGame = false
			}
		case inGame && strings.HasPrefix(line, "name "):
			current.Title = quotedValue(line[len("name "):])
		case inGame && strings.HasPrefix(line, "rom ("):
			if crc, ok := tokenAfter(line, "crc"); ok && current.CRC == "" {
				current.CRC = romfile.NormalizeChecksum(crc)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dat: %w", err)
	}
	if inGame {
		return nil, fmt.Errorf("dat: game block started at line %d is not closed", startAt)
	}
	return games, nil
}

func quotedValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' {
		if end := strings.LastIndexByte(s, '"'); end > 0 {
			return s[1:end]
		}
	}
	return s
}

// tokenAfter scans whitespace-separated fields, skipping quoted strings, and
// returns the field that follows key.
func tokenAfter(line, key string) (string, bool) {
	fields := splitDATFields(line)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == key {
			return fields[i+1], true
		}
	}
	return "", false
}

func splitDATFields(line string) []string {
	var (
		fields []string
		b      strings.Builder
		quoted bool
	)
	flush := func() {
		if b.Len() > 0 {
			fields = append(fields, b.String())
			b.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			if !quoted {
				fields = append(fields, b.String())
				b.Reset()
			}
		case quoted:
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return fields
}
