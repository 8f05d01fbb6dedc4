// Package store is the read-only tabular source the datasets are built from.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"connector-finder/internal/fileio"
)

var ErrNoTable = errors.New("table not found")

// Reader fetches a whole table by name.
type Reader interface {
	ReadTable(ctx context.Context, name string) (*fileio.Table, error)
	Close() error
}

// Open picks the backend from the DSN: a directory of spreadsheets, or a
// SQLite database file.
func Open(dsn string, logger zerolog.Logger) (Reader, error) {
	if dsn == "" {
		return nil, errors.New("store: empty dsn")
	}
	st, err := os.Stat(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if st.IsDir() {
		logger.Info().Str("dir", dsn).Msg("store: spreadsheet directory")
		return NewDir(dsn), nil
	}
	switch strings.ToLower(filepath.Ext(dsn)) {
	case ".db", ".sqlite", ".sqlite3", "":
		logger.Info().Str("file", dsn).Msg("store: sqlite")
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported dsn %q", dsn)
	}
}
