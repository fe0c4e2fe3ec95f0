// Package migrations provides the embedded, versioned SQL schema.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var files embed.FS

// Migration is a single schema change identified by its version.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All returns the embedded migrations ordered by version.
// File names must look like NNN_name.sql.
func All() ([]Migration, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		m, err := parseName(e.Name())
		if err != nil {
			return nil, err
		}
		data, err := files.ReadFile(path.Join("sql", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		m.SQL = string(data)
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}
	return migrations, nil
}

func parseName(name string) (Migration, error) {
	base := strings.TrimSuffix(name, ".sql")
	num, label, ok := strings.Cut(base, "_")
	if !ok {
		return Migration{}, fmt.Errorf("migration %q: expected NNN_name.sql", name)
	}
	version, err := strconv.Atoi(num)
	if err != nil || version <= 0 {
		return Migration{}, fmt.Errorf("migration %q: invalid version", name)
	}
	return Migration{Version: version, Name: label}, nil
}
