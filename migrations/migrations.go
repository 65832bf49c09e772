// Package migrations содержит SQL схему сервиса.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// Up применяет все *.up.sql файлы в лексикографическом порядке.
// Схема написана идемпотентно, повторный запуск безопасен.
func Up(ctx context.Context, db *pgxpool.Pool) error {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		// Without arguments pgx uses the simple protocol, so multi-statement files are fine
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", strings.TrimSuffix(name, ".up.sql"), err)
		}
	}

	return nil
}
