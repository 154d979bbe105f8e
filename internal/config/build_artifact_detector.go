package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ArtifactDetector finds language-specific build output directories by
// reading each ecosystem's own build file, rather than guessing a
// fixed list of directory names.
type ArtifactDetector struct {
	projectRoot string
}

// NewArtifactDetector returns a detector scoped to projectRoot.
func NewArtifactDetector(projectRoot string) *ArtifactDetector {
	return &ArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans the project root for build config files
// and returns exclude-glob patterns for whatever custom output
// directory each one declares.
func (d *ArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, d.detectJavaScriptOutputs()...)
	patterns = append(patterns, d.detectRustOutputs()...)
	patterns = append(patterns, d.detectPythonOutputs()...)
	return DeduplicatePatterns(patterns)
}

func (d *ArtifactDetector) detectJavaScriptOutputs() []string {
	var patterns []string

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "package.json")); err == nil {
		var pkg map[string]interface{}
		if json.Unmarshal(data, &pkg) == nil {
			if scripts, ok := pkg["scripts"].(map[string]interface{}); ok {
				for _, script := range scripts {
					scriptStr, ok := script.(string)
					if !ok || (!strings.Contains(scriptStr, "--outDir") && !strings.Contains(scriptStr, "-outDir")) {
						continue
					}
					parts := strings.Fields(scriptStr)
					for i, part := range parts {
						if (part == "--outDir" || part == "-outDir") && i+1 < len(parts) {
							patterns = append(patterns, "**/"+strings.Trim(parts[i+1], `"'`)+"/**")
						}
					}
				}
			}
			if build, ok := pkg["build"].(map[string]interface{}); ok {
				if outDir, ok := build["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(d.projectRoot, "tsconfig.json")); err == nil {
		var tsconfig map[string]interface{}
		if json.Unmarshal(data, &tsconfig) == nil {
			if opts, ok := tsconfig["compilerOptions"].(map[string]interface{}); ok {
				if outDir, ok := opts["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	for _, name := range []string{"vite.config.js", "vite.config.ts"} {
		data, err := os.ReadFile(filepath.Join(d.projectRoot, name))
		if err != nil {
			continue
		}
		if dir := extractOutDirHint(string(data)); dir != "" {
			patterns = append(patterns, "**/"+dir+"/**")
		}
	}

	return patterns
}

// extractOutDirHint looks for an `outDir: 'x'` or `outDir: "x"` literal
// in a JS config file without pulling in a JS parser for it.
func extractOutDirHint(content string) string {
	idx := strings.Index(content, "outDir")
	if idx == -1 {
		return ""
	}
	rest := content[idx+len("outDir"):]
	colon := strings.Index(rest, ":")
	if colon == -1 {
		return ""
	}
	rest = rest[colon+1:]
	for _, quote := range []string{"'", `"`} {
		parts := strings.SplitN(rest, quote, 3)
		if len(parts) >= 3 {
			if dir := strings.TrimSpace(parts[1]); dir != "" {
				return dir
			}
		}
	}
	return ""
}

func (d *ArtifactDetector) detectRustOutputs() []string {
	var patterns []string

	data, err := os.ReadFile(filepath.Join(d.projectRoot, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo map[string]interface{}
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	if profile, ok := cargo["profile"].(map[string]interface{}); ok {
		if release, ok := profile["release"].(map[string]interface{}); ok {
			if targetDir, ok := release["target-dir"].(string); ok {
				patterns = append(patterns, "**/"+targetDir+"/**")
			}
		}
	}
	return patterns
}

func (d *ArtifactDetector) detectPythonOutputs() []string {
	var patterns []string

	data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pyproject map[string]interface{}
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}
	if tool, ok := pyproject["tool"].(map[string]interface{}); ok {
		if poetry, ok := tool["poetry"].(map[string]interface{}); ok {
			if build, ok := poetry["build"].(map[string]interface{}); ok {
				if targetDir, ok := build["target-dir"].(string); ok {
					patterns = append(patterns, "**/"+targetDir+"/**")
				}
			}
		}
	}
	return patterns
}

// DeduplicatePatterns removes repeated exclude patterns while
// preserving first-seen order.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}
