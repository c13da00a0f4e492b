package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/kvstore"
)

const versionLayout = "20060102150405"

var (
	fileNameRe  = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

	// The same files run on sqlite and postgres.
	nonPortableRe = regexp.MustCompile(`(?i)\b(BLOB|AUTOINCREMENT|BYTEA|SERIAL)\b`)
)

// requiredTables are the tables the stores expect the shipped migrations to
// create.
func requiredTables() []string {
	return []string{kvstore.Entry{}.TableName()}
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<UTC timestamp>_<slug>.sql and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := strings.Trim(slugCleanRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), slug))
	body := "-- +goose Up\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n\n" +
		"-- +goose Down\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n"

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration: %w", err)
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write migration: %w", err)
	}
	return path, f.Close()
}

// ValidateDir checks a migrations directory before it ships: file names carry
// unique 14 digit versions, every file has goose Up and Down sections, no file
// uses column types one of the SQL drivers rejects, and the tables the
// key-value store reads are created somewhere.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	versions := map[string]string{}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		name := entry.Name()
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("%s: expected <version>_<name>.sql with a 14 digit version", name)
		}
		if prev, dup := versions[m[1]]; dup {
			return fmt.Errorf("%s: version %s already used by %s", name, m[1], prev)
		}
		versions[m[1]] = name

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		src := string(raw)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(src, marker) {
				return fmt.Errorf("%s: missing %q", name, marker)
			}
		}
		if bad := nonPortableRe.FindString(src); bad != "" {
			return fmt.Errorf("%s: %s is not portable across sqlite and postgres", name, bad)
		}
		sources = append(sources, src)
	}

	all := strings.ToLower(strings.Join(sources, "\n"))
	for _, table := range requiredTables() {
		if !strings.Contains(all, "create table if not exists "+table) && !strings.Contains(all, "create table "+table) {
			return fmt.Errorf("no migration creates table %s", table)
		}
	}
	return nil
}
