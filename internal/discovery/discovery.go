// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/recipe-runner/runner/internal/config"
	"github.com/recipe-runner/runner/pkg/recipefile"
)

const (
	// SourceExplicit indicates the file was named with --file.
	SourceExplicit Source = iota
	// SourceCurrentDir indicates the file was found in the working directory.
	SourceCurrentDir
	// SourceParentDir indicates the file was found in an ancestor of the working directory.
	SourceParentDir
)

// ErrRecipeFileNotFound is the sentinel error wrapped by NotFoundError.
var ErrRecipeFileNotFound = errors.New("recipe file not found")

type (
	// Source represents where a recipe file was found
	Source int

	// DiscoveredFile is a located recipe file.
	DiscoveredFile struct {
		// Path is the absolute path to the recipe file.
		Path string
		// Dir is the directory holding the file; steps run here.
		Dir    string
		Source Source
	}

	// NotFoundError is returned when no recipe file could be located.
	NotFoundError struct {
		// Name is the file name searched for, or the explicit path.
		Name string
		// From is the directory the upward search started in. Empty for an explicit path.
		From string
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	// Discovery finds and loads the recipe file.
	Discovery struct {
		fileName     string
		baseDir      string
		explicitPath string
	}
)

// String returns a human-readable source name
func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "--file"
	case SourceCurrentDir:
		return "current directory"
	case SourceParentDir:
		return "parent directory"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("recipe file %s does not exist", e.Name)
	}
	return fmt.Sprintf("no %s found in %s or any parent directory", e.Name, e.From)
}

// Unwrap returns ErrRecipeFileNotFound for errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrRecipeFileNotFound }

// New creates a Discovery using cfg.RecipeFile as the file name. A nil cfg
// uses the defaults.
func New(cfg *config.Config, opts ...Option) *Discovery {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Discovery{fileName: cfg.RecipeFile}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithBaseDir sets the directory the upward search starts in. Defaults to
// the process working directory.
func WithBaseDir(dir string) Option { return func(d *Discovery) { d.baseDir = dir } }

// WithExplicitPath disables the search and uses path as the recipe file.
func WithExplicitPath(path string) Option { return func(d *Discovery) { d.explicitPath = path } }

// Find locates the recipe file.
func (d *Discovery) Find() (*DiscoveredFile, error) {
	if d.explicitPath != "" {
		abs, err := filepath.Abs(d.explicitPath)
		if err != nil {
			return nil, fmt.Errorf("resolve recipe file path: %w", err)
		}
		if !isFile(abs) {
			return nil, &NotFoundError{Name: d.explicitPath}
		}
		return &DiscoveredFile{Path: abs, Dir: filepath.Dir(abs), Source: SourceExplicit}, nil
	}

	start := d.baseDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		start = wd
	}
	start, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	source := SourceCurrentDir
	for dir := start; ; {
		if path := d.lookupIn(dir); path != "" {
			return &DiscoveredFile{Path: path, Dir: dir, Source: source}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		source = SourceParentDir
	}
	return nil, &NotFoundError{Name: d.fileName, From: start}
}

// Load finds the recipe file and parses it.
func (d *Discovery) Load() (*recipefile.Registry, *DiscoveredFile, error) {
	file, err := d.Find()
	if err != nil {
		return nil, nil, err
	}
	reg, err := recipefile.Parse(file.Path)
	if err != nil {
		return nil, file, err
	}
	return reg, file, nil
}

// lookupIn returns the recipe file in dir, preferring the configured
// spelling over the lowercase one.
func (d *Discovery) lookupIn(dir string) string {
	names := []string{d.fileName}
	if lower := strings.ToLower(d.fileName); lower != d.fileName {
		names = append(names, lower)
	}
	for _, name := range names {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
