package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CreateMigration writes an empty up/down SQL pair under dir, named with a
// sortable timestamp version like the files shipped under migrations/.
// It returns the two file paths.
func CreateMigration(dir, name string) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	base := filepath.Join(dir, time.Now().Format("20060102150405")+"_"+sanitizeName(name))
	upPath := base + ".up.sql"
	downPath := base + ".down.sql"

	if err := os.WriteFile(upPath, []byte(fmt.Sprintf("-- %s\n\n", name)), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", upPath, err)
	}
	if err := os.WriteFile(downPath, []byte(fmt.Sprintf("-- revert %s\n\n", name)), 0o644); err != nil {
		_ = os.Remove(upPath)
		return "", "", fmt.Errorf("failed to write %s: %w", downPath, err)
	}
	return upPath, downPath, nil
}

// sanitizeName lowercases a migration name and collapses separators to
// single underscores, dropping every other character
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if s := b.String(); s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base name of every up/down pair in dir, in
// version order. A missing directory lists as empty.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
