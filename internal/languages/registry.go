package languages

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

// Registry resolves languages by name and by file extension.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Language
	byExt  map[string]*Language
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Language),
		byExt:  make(map[string]*Language),
	}
}

// DefaultRegistry returns a registry holding the built-in languages.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	builtins, err := Builtins()
	if err != nil {
		return nil, err
	}
	for _, lang := range builtins {
		if err := r.Register(lang); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds lang, replacing any language of the same name and taking
// over its extensions.
func (r *Registry) Register(lang *Language) error {
	if lang == nil || lang.Name == "" {
		return fmt.Errorf("language must have a name")
	}
	if lang.Lexer == nil || lang.Classifier == nil {
		return fmt.Errorf("language %s needs a lexer and a classifier", lang.Name)
	}

	key := strings.ToLower(lang.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byName[key]; ok {
		for _, ext := range old.Extensions {
			if r.byExt[normalizeExt(ext)] == old {
				delete(r.byExt, normalizeExt(ext))
			}
		}
	}
	r.byName[key] = lang
	for _, ext := range lang.Extensions {
		r.byExt[normalizeExt(ext)] = lang
	}
	return nil
}

// Lookup returns the language called name.
func (r *Registry) Lookup(name string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if lang, ok := r.byName[strings.ToLower(name)]; ok {
		return lang, nil
	}
	return nil, lcierrors.NewLanguageError(name, "")
}

// ForPath returns the language registered for the extension of path.
func (r *Registry) ForPath(path string) (*Language, error) {
	ext := normalizeExt(filepath.Ext(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if lang, ok := r.byExt[ext]; ok && ext != "" {
		return lang, nil
	}
	return nil, lcierrors.NewLanguageError("", path)
}

// Resolve picks a language by explicit name when given, else by path.
func (r *Registry) Resolve(name, path string) (*Language, error) {
	if name != "" {
		return r.Lookup(name)
	}
	return r.ForPath(path)
}

// Languages returns all languages sorted by name.
func (r *Registry) Languages() []*Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Language, 0, len(r.byName))
	for _, lang := range r.byName {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
