package gamedb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"gearboy/internal/logging"
	"gearboy/internal/romfile"
	"gearboy/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// Index is a SQLite-backed title table for full No-Intro sets that are too
// large to embed.
type Index struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Resolver = (*Index)(nil)

// IsIndexPath reports whether path names a SQLite index rather than JSON.
func IsIndexPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

// OpenIndex opens or creates the index at path and ensures the schema exists.
func OpenIndex(path string, logger *slog.Logger) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gamedb", "open index", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrConfiguration, "gamedb", "open index",
				fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrConfiguration, "gamedb", "open index", "apply schema", err)
	}
	return &Index{db: db, path: path, logger: logging.NewComponentLogger(logger, "gamedb")}, nil
}

// Close closes the underlying database connection.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Import inserts games in a single transaction. Existing checksums keep their
// title. It returns the number of new rows.
func (x *Index) Import(ctx context.Context, games []Game) (int, error) {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO games (crc, title) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, g := range games {
		crc := romfile.NormalizeChecksum(g.CRC)
		if !checksumPattern.MatchString(crc) {
			continue
		}
		res, err := stmt.ExecContext(ctx, crc, g.Title)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", crc, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	x.logger.Info("game index updated",
		logging.String("path", x.path),
		logging.Int("inserted", inserted),
		logging.Int("records", len(games)),
		logging.String(logging.FieldEventType, "gamedb_imported"),
	)
	return inserted, nil
}

// TitleFor returns the title for checksum, or "" when unknown or on query
// failure.
func (x *Index) TitleFor(checksum string) string {
	if x == nil || x.db == nil {
		return ""
	}
	var title string
	err := x.db.QueryRow(`SELECT title FROM games WHERE crc = ? LIMIT 1`, romfile.NormalizeChecksum(checksum)).Scan(&title)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.WarnWithContext(x.logger, "title lookup failed", "gamedb_query_failed",
				logging.String(logging.FieldChecksum, checksum),
				logging.Error(err),
				logging.String(logging.FieldImpact, "rom is cataloged without a title"),
				logging.String(logging.FieldErrorHint, "rebuild the index with gearboy gamedb build"),
			)
		}
		return ""
	}
	return title
}

// Count returns the number of rows in the index.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}
