package core

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/debug"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/security"
)

// FileFilter decides which files under a root take part in batch checks.
// Paths are slash-separated and relative to the root.
type FileFilter struct {
	root      string
	include   []string
	exclude   []string
	gitignore *config.Gitignore
}

// NewFileFilter builds a filter for root from the check settings. The
// root .gitignore is honored when check.respect_gitignore is set.
func (e *Engine) NewFileFilter(root string) (*FileFilter, error) {
	f := &FileFilter{
		root:    root,
		include: e.cfg.Check.Include,
		exclude: e.cfg.Check.Exclude,
	}
	if e.cfg.Check.RespectGitignore {
		gi, err := config.LoadGitignore(root)
		if err != nil {
			return nil, err
		}
		f.gitignore = gi
	}
	return f, nil
}

// Rel converts an absolute or root-relative path into the filter's form.
func (f *FileFilter) Rel(path string) (string, bool) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// SkipDir reports whether a whole directory can be pruned.
func (f *FileFilter) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if f.gitignore != nil && f.gitignore.ShouldIgnore(rel, true) {
		return true
	}
	for _, p := range f.exclude {
		if !strings.HasSuffix(p, "/**") {
			continue
		}
		if ok, _ := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); ok {
			return true
		}
	}
	return false
}

// Accept reports whether a file passes the include and exclude globs.
func (f *FileFilter) Accept(rel string) bool {
	if f.gitignore != nil && f.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// TreeReport summarizes a batch check. Files are sorted by path.
type TreeReport struct {
	Root        string        `json:"root"`
	Files       []*FileReport `json:"files"`
	Checked     int           `json:"checked"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Diagnostics int           `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`
}

// OK reports whether every checked file is balanced and none failed.
func (r *TreeReport) OK() bool {
	return r.Failed == 0 && r.Diagnostics == 0
}

// CheckTree checks every accepted file under root with a language, using
// check.workers goroutines. Files that cannot be read or lexed are recorded
// in their FileReport; only cancellation aborts the run.
func (e *Engine) CheckTree(ctx context.Context, root string) (*TreeReport, error) {
	if root == "" {
		root = e.cfg.Project.Root
	}
	start := time.Now()

	filter, err := e.NewFileFilter(root)
	if err != nil {
		return nil, err
	}
	paths, skipped, err := e.collect(ctx, root, filter)
	if err != nil {
		return nil, err
	}

	reports := make([]*FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.cfg.Check.Workers))
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := e.CheckFile(gctx, filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				if errors.Is(err, security.ErrBinary) {
					debug.LogCheck("skipping binary file %s", rel)
					return nil
				}
				rep = &FileReport{Diagnostics: []Diagnostic{}, Error: err.Error()}
			}
			rep.Path = rel
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &TreeReport{Root: root, Files: make([]*FileReport, 0, len(reports)), Skipped: skipped}
	for _, rep := range reports {
		if rep == nil {
			report.Skipped++
			continue
		}
		report.Files = append(report.Files, rep)
		if rep.Error != "" {
			report.Failed++
			continue
		}
		report.Checked++
		report.Diagnostics += len(rep.Diagnostics)
	}
	report.Duration = time.Since(start)
	debug.LogCheck("checked %d files under %s (%d skipped, %d failed, %d diagnostics) in %v",
		report.Checked, root, report.Skipped, report.Failed, report.Diagnostics, report.Duration)
	return report, nil
}

// collect walks root in lexical order. Files the filter rejects are ignored;
// accepted files without a registered language count as skipped, as do
// binary files found while checking.
func (e *Engine) collect(ctx context.Context, root string, filter *FileFilter) ([]string, int, error) {
	var paths []string
	skipped := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return lcierrors.NewFileError("walk", path, err)
			}
			debug.LogCheck("walk %s: %v", path, err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, ok := filter.Rel(path)
		if !ok {
			return nil
		}
		if d.IsDir() {
			if filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !filter.Accept(rel) {
			return nil
		}
		if _, err := e.registry.ForPath(rel); err != nil {
			skipped++
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paths, skipped, nil
}
