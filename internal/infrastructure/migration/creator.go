package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- Rollback of {{.Name}}

`

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// File is one versioned migration with its up and down scripts.
type File struct {
	Version     uint
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Base returns the file name without the direction suffix, e.g.
// "000004_sales".
func (f File) Base() string {
	return fmt.Sprintf("%06d_%s", f.Version, f.Name)
}

// List returns the migrations in source ordered by version. A version
// without an up script is reported as an error.
func List(source fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := map[uint]*File{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", e.Name(), err)
		}
		f, ok := byVersion[uint(v)]
		if !ok {
			f = &File{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = f
		} else if f.Name != m[2] {
			return nil, fmt.Errorf("migration version %d is used by %q and %q", v, f.Name, m[2])
		}
		if m[3] == "up" {
			f.UpPath = e.Name()
		} else {
			f.DownPath = e.Name()
		}
	}

	files := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		if f.UpPath == "" {
			return nil, fmt.Errorf("migration %s has no up script", f.Base())
		}
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// Create writes an empty up/down pair into dir numbered one past the highest
// existing version.
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}

	f := &File{
		Version:     1,
		Name:        slug,
		Description: strings.TrimSpace(description),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
	if n := len(existing); n > 0 {
		f.Version = existing[n-1].Version + 1
	}
	f.UpPath = filepath.Join(dir, f.Base()+".up.sql")
	f.DownPath = filepath.Join(dir, f.Base()+".down.sql")

	if err := writeTemplate(f.UpPath, upTemplate, f); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return f, nil
}

func writeTemplate(path, text string, data *File) error {
	tmpl, err := template.New("migration").Parse(text)
	if err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	return tmpl.Execute(out, data)
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lower-cases name and joins its words with underscores.
func sanitizeName(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
