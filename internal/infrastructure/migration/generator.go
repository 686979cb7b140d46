package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

var scriptNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator writes new goose script skeletons, one per dialect, next to the
// embedded ones. Scripts are numbered sequentially.
type Generator struct {
	scriptsPath string
	dialects    []string
	logger      logger.Interface
}

// NewGenerator creates a new migration generator
func NewGenerator(scriptsPath string) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		dialects:    []string{"postgres", "mysql"},
		logger:      logger.NewLogger().With("component", "migration.generator"),
	}
}

// CreateMigration writes NNNNN_<name>.sql for each dialect and returns the paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !scriptNamePattern.MatchString(name) {
		return nil, fmt.Errorf("migration name must be snake_case, got %q", name)
	}

	g.logger.Infow("creating new migration", "name", name)

	paths := make([]string, 0, len(g.dialects))
	for _, dialect := range g.dialects {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		next, err := nextVersion(os.DirFS(dir))
		if err != nil {
			return nil, err
		}

		path := filepath.Join(dir, fmt.Sprintf("%05d_%s.sql", next, name))
		if err := os.WriteFile(path, []byte(g.template(name, dialect)), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write migration file: %w", err)
		}
		paths = append(paths, path)
	}

	g.logger.Infow("migration files created successfully", "files", paths)
	return paths, nil
}

func (g *Generator) template(name, dialect string) string {
	return fmt.Sprintf(`-- Migration: %s (%s)
-- Created: %s

-- +goose Up

-- +goose Down
`, name, dialect, time.Now().UTC().Format("2006-01-02 15:04:05"))
}

// nextVersion returns one past the highest numbered script in fsys.
func nextVersion(fsys fs.FS) (int64, error) {
	matches, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return 0, fmt.Errorf("failed to list scripts: %w", err)
	}
	sort.Strings(matches)

	var highest int64
	for _, m := range matches {
		prefix := m
		for i, r := range m {
			if r < '0' || r > '9' {
				prefix = m[:i]
				break
			}
		}
		v, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}
