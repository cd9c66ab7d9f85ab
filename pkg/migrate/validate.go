package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// sqliteIncompatible lists Postgres-only constructs. The same file runs on
// both dialects, so any of these fails validation.
var sqliteIncompatible = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)\bTIMESTAMPTZ\b|\bWITH\s+TIME\s+ZONE\b`), "use TIMESTAMP and write UTC values"},
	{regexp.MustCompile(`(?i)\b(BIG)?SERIAL\b`), "generate ids in the application"},
	{regexp.MustCompile(`(?i)\bgen_random_uuid\s*\(`), "generate ids in the application"},
	{regexp.MustCompile(`(?i)\bnow\s*\(\s*\)`), "use CURRENT_TIMESTAMP"},
	{regexp.MustCompile(`(?i)\bCREATE\s+(TYPE|EXTENSION)\b`), "enum types and extensions do not exist in sqlite"},
	{regexp.MustCompile(`(?i)\bALTER\s+TABLE\b[^;]*\bADD\s+CONSTRAINT\b`), "declare constraints in CREATE TABLE"},
}

// ValidateDir checks the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return validateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	return validateFS(embedded, embeddedDir)
}

// validateFS requires at least one migration, unique 14-digit versions, both
// goose sections and SQL that runs on postgres and sqlite3 alike.
func validateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := migrationNameRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := versions[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkMigration(name, string(b)); err != nil {
			return err
		}
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

func checkMigration(name, body string) error {
	if !strings.Contains(body, "-- +goose Up") {
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	}
	if !strings.Contains(body, "-- +goose Down") {
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	}
	sql := stripComments(body)
	for _, rule := range sqliteIncompatible {
		if match := rule.re.FindString(sql); match != "" {
			return fmt.Errorf("migration %q uses %q which sqlite cannot run: %s", name, match, rule.reason)
		}
	}
	return nil
}

func stripComments(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
