package config

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Load resolves the full configuration for projectRoot: a .symindex.kdl
// file if one exists (else Default), enriched with the project's own
// .gitignore patterns and with output directories detected from each
// ecosystem's own build file, then smart-defaulted and validated.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default(projectRoot)
	}

	if cfg.Index.RespectGitignore {
		gi := NewGitignoreParser()
		if err := gi.LoadGitignore(projectRoot); err != nil {
			return nil, err
		}
		cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, gi.GetExclusionPatterns()...))
	}

	detected := NewArtifactDetector(projectRoot).DetectOutputDirectories()
	cfg.Exclude = DeduplicatePatterns(append(cfg.Exclude, detected...))

	cfg.ApplySmartDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShouldExclude reports whether a project-root-relative path (forward
// slashes) matches any exclude pattern.
func (c *Config) ShouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Exclude {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

// ShouldInclude reports whether relPath matches the include set. An
// empty include set matches everything.
func (c *Config) ShouldInclude(relPath string) bool {
	if len(c.Include) == 0 {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range c.Include {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

// Wanted reports whether relPath should be fed to a collector: included
// and not excluded.
func (c *Config) Wanted(relPath string) bool {
	return c.ShouldInclude(relPath) && !c.ShouldExclude(relPath)
}
