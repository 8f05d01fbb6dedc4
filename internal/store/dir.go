package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"connector-finder/internal/fileio"
)

// Dir serves tables from "<dir>/<name>.xlsx|.xls|.csv", header on row 1.
type Dir struct {
	root string
}

func NewDir(root string) *Dir { return &Dir{root: root} }

func (d *Dir) Close() error { return nil }

func (d *Dir) ReadTable(ctx context.Context, name string) (*fileio.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ext := range fileio.Extensions {
		path := filepath.Join(d.root, name+ext)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		t, err := fileio.ReadAny(f, path, 1)
		f.Close()
		if err != nil {
			return nil, err
		}
		t.Name = name
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNoTable, name, d.root)
}
