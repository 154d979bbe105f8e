package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDLDefaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.Index.RespectGitignore)
	assert.Equal(t, 50000, cfg.Index.MaxFileCount)
}

func TestParseKDLProjectAndIndex(t *testing.T) {
	content := `
project {
    name "demo"
}
index {
    max_file_size "5MB"
    max_file_count 1000
    follow_symlinks true
    respect_gitignore false
    watch_debounce_ms 50
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, int64(5*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, 1000, cfg.Index.MaxFileCount)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.Equal(t, 50, cfg.Index.WatchDebounceMs)
}

func TestParseKDLRootsAndLibraries(t *testing.T) {
	content := `
root "./src"
root "./tools" {
    name "tools"
}
library "./vendor/acme" {
    name "acme"
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	require.Len(t, cfg.Roots, 2)
	assert.Equal(t, "./src", cfg.Roots[0].Dir)
	assert.Equal(t, "src", cfg.Roots[0].Name)
	assert.Equal(t, "tools", cfg.Roots[1].Name)

	require.Len(t, cfg.Libraries, 1)
	assert.Equal(t, "acme", cfg.Libraries[0].Name)
}

func TestParseKDLIncludeExclude(t *testing.T) {
	content := `
include "**/*.go" "**/*.rs"
exclude "**/testdata/**"
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.go", "**/*.rs"}, cfg.Include)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Exclude)
}

func TestParseSizeSuffixes(t *testing.T) {
	cases := map[string]int64{
		"10B":  10,
		"2KB":  2 * 1024,
		"5MB":  5 * 1024 * 1024,
		"1GB":  1024 * 1024 * 1024,
		"1024": 1024,
	}
	for s, want := range cases {
		got, err := parseSize(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}

func TestParseSizeInvalid(t *testing.T) {
	_, err := parseSize("not-a-size")
	require.Error(t, err)
}
