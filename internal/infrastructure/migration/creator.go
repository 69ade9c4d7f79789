package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

var migrationTemplates = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

-- Monetary columns are DECIMAL(18,4); tax codes are VARCHAR(50).

`))

func init() {
	template.Must(migrationTemplates.New("down").Parse(`-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}

`))
}

// now is replaced in tests.
var now = time.Now

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair named after the current time
// (YYYYMMDDHHMMSS) so that files sort in creation order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain at least one letter or digit")
	}
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	t := now()
	version := t.UTC().Format("20060102150405")
	base := filepath.Join(migrationsDir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   t.Format(time.RFC3339),
		UpPath:      base + upSuffix,
		DownPath:    base + downSuffix,
	}

	if err := writeTemplate(mf.UpPath, "up", mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(mf.DownPath, "down", mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeTemplate(path, name string, data *MigrationFile) error {
	// O_EXCL so two runs within the same second never clobber each other.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return migrationTemplates.ExecuteTemplate(f, name, data)
}

// sanitizeName lower-cases name and collapses runs of spaces, dashes and
// underscores into one underscore. Other characters are dropped.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the sorted base names of every up migration in fsys.
func ListMigrations(fsys fs.FS) ([]string, error) {
	ups, _, err := scan(fsys)
	if err != nil {
		return nil, err
	}
	return ups, nil
}

// CheckPairs reports every migration that lacks its up or down half.
func CheckPairs(fsys fs.FS) error {
	ups, downs, err := scan(fsys)
	if err != nil {
		return err
	}
	var errs []error
	for _, base := range ups {
		if !slices.Contains(downs, base) {
			errs = append(errs, fmt.Errorf("%s: missing %s", base, downSuffix))
		}
	}
	for _, base := range downs {
		if !slices.Contains(ups, base) {
			errs = append(errs, fmt.Errorf("%s: missing %s", base, upSuffix))
		}
	}
	return errors.Join(errs...)
}

func scan(fsys fs.FS) (ups, downs []string, err error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, upSuffix):
			ups = append(ups, strings.TrimSuffix(name, upSuffix))
		case strings.HasSuffix(name, downSuffix):
			downs = append(downs, strings.TrimSuffix(name, downSuffix))
		}
	}
	slices.Sort(ups)
	slices.Sort(downs)
	return ups, downs, nil
}
