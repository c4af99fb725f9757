package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

// Upper bounds for user-supplied settings.
const (
	maxFileSizeLimit = 100 * 1024 * 1024
	maxDebounceMs    = 60_000
	maxWorkers       = 256
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return lcierrors.NewConfigError("project", "", errors.New("project root cannot be empty"))
	}

	if err := v.validateMatchingConfig(&cfg.Matching); err != nil {
		return lcierrors.NewConfigError("matching", "", err)
	}

	if err := v.validateCheckConfig(&cfg.Check); err != nil {
		return lcierrors.NewConfigError("check", "", err)
	}

	if cfg.Cache.MaxEntries < 0 || cfg.Cache.TTLSeconds < 0 {
		return lcierrors.NewConfigError("cache", "", fmt.Errorf("max_entries and ttl_seconds must not be negative, got %d and %d",
			cfg.Cache.MaxEntries, cfg.Cache.TTLSeconds))
	}

	if cfg.Watch.DebounceMs < 0 || cfg.Watch.DebounceMs > maxDebounceMs {
		return lcierrors.NewConfigError("watch", "", fmt.Errorf("debounce_ms must be within [0, %d], got %d", maxDebounceMs, cfg.Watch.DebounceMs))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateMatchingConfig(m *Matching) error {
	if m.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", m.MaxSteps)
	}
	switch m.StrictTags {
	case "", StrictTagsAuto, StrictTagsOn, StrictTagsOff:
		return nil
	}
	return fmt.Errorf("strict_tags must be one of auto, on, off; got %q", m.StrictTags)
}

func (v *Validator) validateCheckConfig(c *Check) error {
	if c.Workers < 0 || c.Workers > maxWorkers {
		return fmt.Errorf("workers must be within [0, %d], got %d", maxWorkers, c.Workers)
	}
	if c.MaxFileSize < 0 || c.MaxFileSize > maxFileSizeLimit {
		return fmt.Errorf("max_file_size must be within [0, %d], got %d", maxFileSizeLimit, c.MaxFileSize)
	}
	for _, p := range append(append([]string{}, c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// cores-1, minimum of 1
	if cfg.Check.Workers == 0 {
		cfg.Check.Workers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Check.MaxFileSize == 0 {
		cfg.Check.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Matching.StrictTags == "" {
		cfg.Matching.StrictTags = StrictTagsAuto
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
