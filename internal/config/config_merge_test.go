package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfigs_ExclusionsMerge(t *testing.T) {
	base := &Config{Check: Check{Exclude: []string{"**/a/**", "**/shared/**"}}}
	project := &Config{Check: Check{Exclude: []string{"**/shared/**", "**/b/**"}}}

	merged := mergeConfigs(base, project)
	assert.Equal(t, []string{"**/a/**", "**/shared/**", "**/b/**"}, merged.Check.Exclude)
}

func TestMergeConfigs_InclusionsProjectOverride(t *testing.T) {
	base := &Config{Check: Check{Include: []string{"**/*.go"}}}
	project := &Config{Check: Check{Include: []string{"**/*.html"}}}
	assert.Equal(t, []string{"**/*.html"}, mergeConfigs(base, project).Check.Include)

	project.Check.Include = nil
	assert.Equal(t, []string{"**/*.go"}, mergeConfigs(base, project).Check.Include)
}

func TestMergeConfigs_LanguagesDirFallback(t *testing.T) {
	base := &Config{LanguagesDir: "/home/me/langs"}
	assert.Equal(t, "/home/me/langs", mergeConfigs(base, &Config{}).LanguagesDir)
	assert.Equal(t, "local", mergeConfigs(base, &Config{LanguagesDir: "local"}).LanguagesDir)
}

func TestLoadWithRoot_MergesGlobalAndProjectConfigs(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()

	globalConfig := `
check {
    exclude {
        "**/real_projects/**"
    }
    include "**/*.go"
    max_file_size "5MB"
}
languages_dir "/global/langs"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, FileName), []byte(globalConfig), 0o644))

	projectConfig := `
check {
    exclude "**/generated/**"
    max_file_size "1MB"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpProject, FileName), []byte(projectConfig), 0o644))
	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)

	assert.Contains(t, cfg.Check.Exclude, "**/real_projects/**")
	assert.Contains(t, cfg.Check.Exclude, "**/generated/**")
	assert.Equal(t, []string{"**/*.go"}, cfg.Check.Include)
	assert.Equal(t, int64(1024*1024), cfg.Check.MaxFileSize)
	assert.Equal(t, "/global/langs", cfg.LanguagesDir)
	assert.Equal(t, tmpProject, cfg.Project.Root)
}

func TestLoadWithRoot_ExplicitPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.kdl")
	require.NoError(t, os.WriteFile(path, []byte("matching {\n    max_steps 7\n}\n"), 0o644))

	cfg, err := LoadWithRoot(path, dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Matching.MaxSteps)
}

func TestLoadWithRoot_GlobalConfigOnly(t *testing.T) {
	tmpHome := t.TempDir()
	tmpProject := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpHome, FileName), []byte("watch {\n    debounce_ms 900\n}\n"), 0o644))
	t.Setenv("HOME", tmpHome)

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Watch.DebounceMs)
	assert.Equal(t, tmpProject, cfg.Project.Root)
}

func TestLoadWithRoot_DefaultConfigFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpProject := t.TempDir()

	cfg, err := LoadWithRoot("", tmpProject)
	require.NoError(t, err)
	assert.Equal(t, Default(tmpProject), cfg)
}

func TestLanguagesPath(t *testing.T) {
	cfg := Default("/proj")
	assert.Empty(t, cfg.LanguagesPath())
	cfg.LanguagesDir = "langs"
	assert.Equal(t, filepath.Join("/proj", "langs"), cfg.LanguagesPath())
	cfg.LanguagesDir = "/abs/langs"
	assert.Equal(t, "/abs/langs", cfg.LanguagesPath())
}
