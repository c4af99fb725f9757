package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

// Gitignore holds the patterns of a .gitignore file translated to
// doublestar globs.
type Gitignore struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
	glob      string
}

// LoadGitignore reads rootPath/.gitignore. A missing file yields an empty set.
func LoadGitignore(rootPath string) (*Gitignore, error) {
	path := filepath.Join(rootPath, ".gitignore")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Gitignore{}, nil
		}
		return nil, lcierrors.NewFileError("open", path, err)
	}
	defer f.Close()

	gi, err := ParseGitignore(f)
	if err != nil {
		return nil, lcierrors.NewFileError("read", path, err)
	}
	return gi, nil
}

// ParseGitignore parses gitignore lines from r.
func ParseGitignore(r io.Reader) (*Gitignore, error) {
	gi := &Gitignore{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gi.AddPattern(scanner.Text())
	}
	return gi, scanner.Err()
}

// AddPattern adds one gitignore line. Blank lines and comments are ignored.
func (gi *Gitignore) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := GitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		// a slash in the middle anchors the pattern like a leading one
		p.Absolute = true
	}
	if line == "" {
		return
	}
	p.Pattern = line
	p.glob = toGlob(p)
	gi.patterns = append(gi.patterns, p)
}

// Patterns returns the parsed patterns in file order.
func (gi *Gitignore) Patterns() []GitignorePattern {
	return gi.patterns
}

// ShouldIgnore reports whether the slash-separated relative path is ignored.
// Later patterns override earlier ones, so a negation can re-include a path.
func (gi *Gitignore) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	ignored := false
	for _, p := range gi.patterns {
		if p.matches(path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	if ok, _ := doublestar.Match(p.glob+"/**", path); ok {
		return true
	}
	if p.Directory && !isDir {
		return false
	}
	ok, _ := doublestar.Match(p.glob, path)
	return ok
}

func toGlob(p GitignorePattern) string {
	if p.Absolute {
		return p.Pattern
	}
	return "**/" + p.Pattern
}
