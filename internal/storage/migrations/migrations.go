// Package migrations embeds the SQL schema files for the durable stores.
// Applying them is left to the caller so this package stays free of any
// driver dependency.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// Postgres returns the PostgreSQL migration statements in lexical file
// order. Migrations are written to be idempotent.
func Postgres() ([]string, error) {
	return read(postgresFS, "postgres")
}

// Clickhouse returns the ClickHouse migration statements in lexical file
// order. Migrations are written to be idempotent.
func Clickhouse() ([]string, error) {
	return read(clickhouseFS, "clickhouse")
}

func read(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var stmts []string
	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		// One statement per file; ClickHouse rejects multi-statement execs.
		stmt := strings.TrimSpace(string(data))
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
