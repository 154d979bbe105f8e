// Package config discovers the source roots a Host indexes and the
// include/exclude patterns that scope them, loaded from a per-project
// KDL file and enriched by language-specific build-artifact detection
// and .gitignore.
package config

import (
	"errors"
	"fmt"
	"runtime"

	symerrors "github.com/fast-ide/symindex/internal/errors"
)

// Config is the resolved, validated configuration for one project:
// where its local (mutable, watched) and library (immutable, cached
// singly) source roots are, and what to exclude from both.
type Config struct {
	Project     Project
	Index       Index
	Performance Performance
	Suggest     Suggest
	Include     []string
	Exclude     []string
	Roots       []LocalRoot
	Libraries   []LibraryRoot
}

// Project names the project root and, optionally, a display name.
type Project struct {
	Root string
	Name string
}

// LocalRoot is one local (workspace, watched) source root: a directory
// that becomes one crate.
type LocalRoot struct {
	Dir  string
	Name string
}

// LibraryRoot is one library (dependency, syntax-only, never watched)
// source root.
type LibraryRoot struct {
	Dir  string
	Name string
}

// Index controls what files the host is willing to parse.
type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
}

// Performance bounds the concurrency the collector and memo cache use.
type Performance struct {
	MaxGoroutines int // 0 = auto-detect (NumCPU-1)
	DebounceMs    int
}

// Suggest configures the "did you mean" enrichment on an empty resolve.
type Suggest struct {
	Enabled   bool
	Threshold float64
}

// Default returns a Config with the teacher-style defaults: generous
// file limits, gitignore respected, watching on, suggestions on at the
// go-edlib default threshold.
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxFileCount:     50000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  200,
		},
		Performance: Performance{},
		Suggest:     Suggest{Enabled: true, Threshold: 0.80},
		Include:     nil,
		Exclude:     defaultExclusions(),
	}
}

// ApplySmartDefaults fills in any zero-valued tunable left unset after
// loading, the way the teacher's Validator resolves "0 means auto".
func (c *Config) ApplySmartDefaults() {
	if c.Performance.MaxGoroutines == 0 {
		c.Performance.MaxGoroutines = max(1, runtime.NumCPU()-1)
	}
	if c.Index.MaxFileSize == 0 {
		c.Index.MaxFileSize = 10 * 1024 * 1024
	}
	if c.Index.MaxFileCount == 0 {
		c.Index.MaxFileCount = 50000
	}
	if c.Suggest.Threshold == 0 {
		c.Suggest.Threshold = 0.80
	}
}

// Validate rejects an internally inconsistent Config before it reaches
// the host — the same role the teacher's Validator plays, minus the
// defaulting (ApplySmartDefaults does that separately here).
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return symerrors.NewConfigError("project.root", "", errors.New("cannot be empty"))
	}
	if c.Index.MaxFileSize < 0 {
		return symerrors.NewConfigError("index.max_file_size", fmt.Sprint(c.Index.MaxFileSize), errors.New("cannot be negative"))
	}
	if c.Index.MaxFileCount < 0 {
		return symerrors.NewConfigError("index.max_file_count", fmt.Sprint(c.Index.MaxFileCount), errors.New("cannot be negative"))
	}
	if c.Performance.MaxGoroutines < 0 {
		return symerrors.NewConfigError("performance.max_goroutines", fmt.Sprint(c.Performance.MaxGoroutines), errors.New("cannot be negative"))
	}
	if c.Suggest.Threshold < 0 || c.Suggest.Threshold > 1 {
		return symerrors.NewConfigError("suggest.threshold", fmt.Sprint(c.Suggest.Threshold), errors.New("must be in [0,1]"))
	}
	return nil
}
