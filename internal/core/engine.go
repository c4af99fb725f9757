package core

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/standardbeagle/braces/internal/braces"
	"github.com/standardbeagle/braces/internal/cache"
	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/debug"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/languages"
	"github.com/standardbeagle/braces/internal/security"
	"github.com/standardbeagle/braces/internal/tokens"
)

// Engine ties the language registry, the token cache and the matcher
// settings together. It is safe for concurrent use.
type Engine struct {
	cfg       *config.Config
	registry  *languages.Registry
	cache     *cache.TokenCache
	validator *security.FileValidator
	options   []braces.Option
}

// NewEngine validates cfg, loads the built-in languages plus any custom
// tables under cfg.LanguagesDir, and starts the token cache. A nil cfg
// means config.Default of the working directory.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		cfg = config.Default(wd)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	reg, err := languages.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if dir := cfg.LanguagesPath(); dir != "" {
		langs, err := reg.RegisterDir(dir)
		if err != nil {
			return nil, err
		}
		debug.LogCheck("registered %d custom languages from %s", len(langs), dir)
	}
	return NewEngineWithRegistry(cfg, reg), nil
}

// NewEngineWithRegistry builds an engine around an existing registry. cfg is
// used as given.
func NewEngineWithRegistry(cfg *config.Config, reg *languages.Registry) *Engine {
	return &Engine{
		cfg:       cfg,
		registry:  reg,
		validator: security.NewFileValidator(),
		cache: cache.NewTokenCache(cache.CacheConfig{
			MaxEntries:      cfg.Cache.MaxEntries,
			TTL:             time.Duration(cfg.Cache.TTLSeconds) * time.Second,
			AutoCleanup:     true,
			CleanupInterval: cache.DefaultCleanupInterval,
		}),
		options: []braces.Option{
			braces.WithMaxSteps(cfg.Matching.MaxSteps),
			braces.WithStrictness(strictness(cfg.Matching.StrictTags)),
		},
	}
}

// Close stops background work owned by the engine.
func (e *Engine) Close() {
	e.cache.Close()
}

func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) Registry() *languages.Registry {
	return e.registry
}

func (e *Engine) Cache() *cache.TokenCache {
	return e.cache
}

// Matcher returns a matcher for lang carrying the configured budget and
// strictness. extra options are applied last.
func (e *Engine) Matcher(lang *languages.Language, extra ...braces.Option) braces.Matcher {
	opts := append(append([]braces.Option{}, e.options...), extra...)
	return lang.Matcher(opts...)
}

// Tokenize lexes content as lang, going through the token cache. path is
// only used for cache invalidation and error messages.
func (e *Engine) Tokenize(ctx context.Context, lang *languages.Language, path string, content []byte) (tokens.Stream, error) {
	if stream, ok := e.cache.Get(lang.Name, content); ok {
		debug.LogLex("cache hit %s (%s, %d tokens)", path, lang.Name, len(stream))
		return stream, nil
	}

	start := time.Now()
	stream, err := lang.Lexer.Tokenize(ctx, content)
	if err != nil {
		var lexErr *lcierrors.LexError
		if errors.As(err, &lexErr) {
			if lexErr.Path == "" {
				lexErr.Path = path
			}
			return nil, lexErr
		}
		return nil, lcierrors.NewLexError(lang.Name, path, err)
	}
	debug.LogLex("tokenized %s (%s): %d tokens in %v", path, lang.Name, len(stream), time.Since(start))

	e.cache.Put(path, lang.Name, content, stream)
	return stream, nil
}

// Invalidate forgets the cached tokens of path.
func (e *Engine) Invalidate(path string) {
	if e.cache.InvalidatePath(path) {
		debug.LogLex("invalidated %s", path)
	}
}

func strictness(mode string) braces.Strictness {
	switch mode {
	case config.StrictTagsOn:
		return braces.StrictOn
	case config.StrictTagsOff:
		return braces.StrictOff
	default:
		return braces.StrictAuto
	}
}
