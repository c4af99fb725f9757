package config

import (
	"os"
	"path/filepath"
)

// FileName is the project configuration file looked up in the root and in
// the user's home directory.
const FileName = ".braces.kdl"

// Tag strictness modes accepted by matching.strict_tags.
const (
	StrictTagsAuto = "auto"
	StrictTagsOn   = "on"
	StrictTagsOff  = "off"
)

// Defaults applied when a setting is absent.
const (
	DefaultMaxSteps    = 0 // unbounded
	DefaultMaxFileSize = 2 * 1024 * 1024
	DefaultCacheSize   = 256
	DefaultCacheTTL    = 300
	DefaultDebounceMs  = 200
)

type Config struct {
	Version      int
	Project      Project
	Matching     Matching
	Check        Check
	Cache        Cache
	Watch        Watch
	LanguagesDir string // Directory of custom *.toml language tables, relative to Project.Root
}

type Project struct {
	Root string
}

type Matching struct {
	MaxSteps   int    // Token budget per scan, 0 = unbounded
	StrictTags string // "auto", "on" or "off"
}

type Check struct {
	Workers          int   // 0 = auto-detect (NumCPU-1)
	MaxFileSize      int64 // Files above this size are reported, not checked
	RespectGitignore bool  // Skip paths ignored by the root .gitignore
	Include          []string
	Exclude          []string
}

type Cache struct {
	MaxEntries int // 0 disables the token cache
	TTLSeconds int
}

type Watch struct {
	DebounceMs int
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Matching: Matching{
			MaxSteps:   DefaultMaxSteps,
			StrictTags: StrictTagsAuto,
		},
		Check: Check{
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
			Include:          []string{},
			Exclude:          getDefaultExclusions(),
		},
		Cache: Cache{
			MaxEntries: DefaultCacheSize,
			TTLSeconds: DefaultCacheTTL,
		},
		Watch: Watch{DebounceMs: DefaultDebounceMs},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads the project configuration. An explicit path is read
// as-is; otherwise FileName is looked up in rootDir (or the working
// directory). A ~/.braces.kdl is merged underneath either one.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: global base config
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config
	var projectConfig *Config
	var err error
	if path != "" {
		projectConfig, err = LoadKDLFile(path, searchDir)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	// Step 3: merge
	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absOrSelf(searchDir)
		return baseConfig, nil
	}

	return Default(absOrSelf(searchDir)), nil
}

// mergeConfigs overlays project on base. Exclusions from both are kept;
// inclusions come from base only when the project names none.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Check.Exclude) > 0 {
		merged.Check.Exclude = DeduplicatePatterns(append(append([]string{}, base.Check.Exclude...), project.Check.Exclude...))
	}
	if len(project.Check.Include) == 0 && len(base.Check.Include) > 0 {
		merged.Check.Include = base.Check.Include
	}
	if merged.LanguagesDir == "" {
		merged.LanguagesDir = base.LanguagesDir
	}

	return &merged
}

// LanguagesPath resolves LanguagesDir against the project root.
func (c *Config) LanguagesPath() string {
	if c.LanguagesDir == "" || filepath.IsAbs(c.LanguagesDir) {
		return c.LanguagesDir
	}
	return filepath.Join(c.Project.Root, c.LanguagesDir)
}

// DeduplicatePatterns removes repeated patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
