package gamedb

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"gearboy/internal/romfile"
	"gearboy/internal/services"
)

//go:embed gbdb.json
var bundled []byte

var checksumPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// Game is a single reference record mapping a checksum to a display title.
type Game struct {
	Title string `json:"title"`
	CRC   string `json:"crc"`
}

// Resolver maps a ROM checksum to its display title. Unknown checksums resolve
// to the empty string.
type Resolver interface {
	TitleFor(checksum string) string
}

// DB is an immutable in-memory checksum to title table.
type DB struct {
	titles map[string]string
	games  []Game
}

var _ Resolver = (*DB)(nil)

// New builds a DB from records. When a checksum appears more than once the
// first title wins, matching the order of the source DAT.
func New(games []Game) *DB {
	db := &DB{titles: make(map[string]string, len(games)), games: make([]Game, 0, len(games))}
	for _, g := range games {
		crc := romfile.NormalizeChecksum(g.CRC)
		if _, exists := db.titles[crc]; exists {
			continue
		}
		db.titles[crc] = g.Title
		db.games = append(db.games, Game{Title: g.Title, CRC: crc})
	}
	return db
}

// Load parses the JSON reference format. Malformed data is reported as a
// configuration error.
func Load(r io.Reader) (*DB, error) {
	var games []Game
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&games); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gamedb", "decode", "malformed game database", err)
	}
	for i, g := range games {
		if !checksumPattern.MatchString(romfile.NormalizeChecksum(g.CRC)) {
			return nil, services.Wrap(services.ErrConfiguration, "gamedb", "decode",
				fmt.Sprintf("record %d has invalid crc %q", i, g.CRC), nil)
		}
	}
	return New(games), nil
}

// LoadFile reads a JSON reference file from disk.
func LoadFile(path string) (*DB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gamedb", "open", path, err)
	}
	defer file.Close()
	return Load(file)
}

// Bundled returns the database compiled into the binary.
func Bundled() (*DB, error) {
	return Load(bytes.NewReader(bundled))
}

// TitleFor returns the title for checksum, or "" when unknown. Lookups are
// case-insensitive.
func (db *DB) TitleFor(checksum string) string {
	if db == nil {
		return ""
	}
	return db.titles[romfile.NormalizeChecksum(checksum)]
}

// Len reports the number of distinct checksums.
func (db *DB) Len() int {
	if db == nil {
		return 0
	}
	return len(db.games)
}

// Games returns a copy of the records in load order.
func (db *DB) Games() []Game {
	if db == nil {
		return nil
	}
	return append([]Game(nil), db.games...)
}

// Search returns records whose title contains query, compared with Unicode
// case folding, ordered by title.
func (db *DB) Search(query string) []Game {
	if db == nil {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var out []Game
	for _, g := range db.games {
		if strings.Contains(fold.String(g.Title), needle) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// WriteJSON encodes games in the reference format understood by Load.
func WriteJSON(w io.Writer, games []Game) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	enc.SetEscapeHTML(false)
	if games == nil {
		games = []Game{}
	}
	if err := enc.Encode(games); err != nil {
		return fmt.Errorf("encode game database: %w", err)
	}
	return nil
}

// Source is a Resolver that may hold resources.
type Source interface {
	Resolver
	Close() error
}

type staticSource struct{ *DB }

func (staticSource) Close() error { return nil }

// Open selects the reference data named by path: the bundled table when path
// is empty, a SQLite index for .db/.sqlite files, and a JSON file otherwise.
// A missing index is a configuration error rather than an empty table.
func Open(path string, logger *slog.Logger) (Source, error) {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		db, err := Bundled()
		if err != nil {
			return nil, err
		}
		return staticSource{db}, nil
	case IsIndexPath(path):
		if _, err := os.Stat(path); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "gamedb", "open index", path, err)
		}
		return OpenIndex(path, logger)
	default:
		db, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return staticSource{db}, nil
	}
}
