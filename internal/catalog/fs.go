package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/gsea-browser/internal/apperr"
	"github.com/starford/gsea-browser/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// A missing or non-directory root is a discovery error.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &apperr.DiscoveryError{Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &apperr.DiscoveryError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, &apperr.DiscoveryError{Path: abs, Err: errors.New("not a directory")}
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data root.
func (f *FS) Root() string {
	return f.root
}

// segment rejects names that are not a single plain path element.
func segment(kind, name string) error {
	if name == "" {
		return fmt.Errorf("catalog: %s name is required: %w", kind, apperr.ErrInvalidPath)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("catalog: %s name %q: %w", kind, name, apperr.ErrInvalidPath)
	}
	return nil
}

// safePath joins project (and optionally file) under the root and rejects
// any result that escapes it.
func (f *FS) safePath(project, file string) (string, error) {
	if err := segment("project", project); err != nil {
		return "", err
	}
	joined := filepath.Join(f.root, project)
	if file != "" {
		if err := segment("file", file); err != nil {
			return "", err
		}
		joined = filepath.Join(joined, file)
	}
	if !strings.HasPrefix(joined, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("catalog: %s escapes data root: %w", joined, apperr.ErrInvalidPath)
	}
	return joined, nil
}

// readDir lists dir without sorting, unlike os.ReadDir.
func readDir(dir string) ([]fs.DirEntry, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.ReadDir(-1)
}

// isDir follows symlinks so a linked project directory still counts.
func isDir(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func isRegular(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Projects lists the directories directly under the root.
func (f *FS) Projects() ([]models.Project, error) {
	entries, err := readDir(f.root)
	if err != nil {
		return nil, &apperr.DiscoveryError{Path: f.root, Err: err}
	}
	out := make([]models.Project, 0, len(entries))
	for _, e := range entries {
		if isDir(f.root, e) {
			out = append(out, models.Project{Name: e.Name()})
		}
	}
	return out, nil
}

// ResultFiles lists the .csv files directly under a project directory.
func (f *FS) ResultFiles(project string) ([]models.ResultFile, error) {
	dir, err := f.safePath(project, "")
	if err != nil {
		return nil, err
	}
	entries, err := readDir(dir)
	if err != nil {
		return nil, &apperr.DiscoveryError{Path: dir, Err: err}
	}
	out := make([]models.ResultFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ResultExt) || !isRegular(dir, e) {
			continue
		}
		out = append(out, models.ResultFile{
			Project: project,
			Name:    DisplayName(name),
			File:    name,
		})
	}
	return out, nil
}

// DisplayName cuts a file name at the first occurrence of the result extension.
func DisplayName(file string) string {
	label, _, _ := strings.Cut(file, ResultExt)
	return label
}

// Read returns the raw bytes of a result file.
func (f *FS) Read(project, file string) ([]byte, error) {
	abs, err := f.safePath(project, file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog: read %s/%s: %w", project, file, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: read %s/%s: %w", project, file, err)
	}
	return data, nil
}

// Path resolves a result file to its absolute path and checks it exists.
func (f *FS) Path(project, file string) (string, error) {
	abs, err := f.safePath(project, file)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("catalog: stat %s/%s: %w", project, file, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("catalog: stat %s/%s: %w", project, file, err)
	}
	return abs, nil
}

// Split maps an absolute path under root back to (project, file).
// file is empty for a project directory itself. ok is false for paths
// outside the two-level layout.
func Split(root, abs string) (project, file string, ok bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
