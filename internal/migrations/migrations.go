// Package migrations holds the SQL schema. Every file is idempotent, so applying the
// whole set again is safe.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// List returns migration file names in apply order.
func List() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration in order and returns the names applied.
func Apply(ctx context.Context, db *pgxpool.Pool) ([]string, error) {
	names, err := List()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		b, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(b)); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return names, nil
}
