package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/braces/internal/core"
	lcierrors "github.com/standardbeagle/braces/internal/errors"
	"github.com/standardbeagle/braces/internal/metrics"
	"github.com/standardbeagle/braces/pkg/pathutil"
)

func checkCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = []string{engine.Config().Project.Root}
	}

	start := time.Now()
	total := &core.TreeReport{Root: engine.Config().Project.Root, Files: []*core.FileReport{}}
	var errs []error
	for _, path := range paths {
		if err := checkPath(c, engine, path, total); err != nil {
			errs = append(errs, err)
		}
	}
	total.Duration = time.Since(start)

	var stats *metrics.CheckStats
	if c.Bool("stats") {
		stats = metrics.NewCheckStats()
		stats.CalculateFromReport(total)
	}

	if !c.Bool("all") {
		problems := total.Files[:0:0]
		for _, f := range total.Files {
			if !f.OK() {
				problems = append(problems, f)
			}
		}
		total.Files = problems
	}

	if c.Bool("json") {
		var out interface{} = total
		if stats != nil {
			out = map[string]interface{}{"report": total, "stats": stats.FormatAsJSON()}
		}
		if err := writeJSON(c.App.Writer, out); err != nil {
			return err
		}
	} else {
		for _, f := range total.Files {
			printReport(c.App.Writer, f)
		}
		if stats != nil {
			fmt.Fprint(c.App.Writer, "\n"+stats.FormatAsText())
		}
		fmt.Fprintf(c.App.ErrWriter, "%d files checked, %d skipped, %d failed, %d problems (%v)\n",
			total.Checked, total.Skipped, total.Failed, total.Diagnostics, total.Duration.Round(time.Millisecond))
	}

	if err := lcierrors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return err
	}
	if !total.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

// checkPath checks one file or tree and folds the result into total.
// Report paths are shown relative to the project root.
func checkPath(c *cli.Context, engine *core.Engine, path string, total *core.TreeReport) error {
	info, err := os.Stat(path)
	if err != nil {
		return lcierrors.NewFileError("stat", path, err)
	}
	display := pathutil.ToDisplay(path, engine.Config().Project.Root)

	if !info.IsDir() {
		doc, err := engine.Open(c.Context, path, c.String("language"))
		if err != nil {
			total.Failed++
			total.Files = append(total.Files, &core.FileReport{Path: display, Diagnostics: []core.Diagnostic{}, Error: err.Error()})
			return nil
		}
		doc.Path = display
		rep := engine.CheckDocument(doc)
		total.Checked++
		total.Diagnostics += len(rep.Diagnostics)
		total.Files = append(total.Files, rep)
		return nil
	}

	tree, err := engine.CheckTree(c.Context, path)
	if err != nil {
		return err
	}
	for _, f := range tree.Files {
		f.Path = pathutil.Join(display, f.Path)
		total.Files = append(total.Files, f)
	}
	total.Checked += tree.Checked
	total.Skipped += tree.Skipped
	total.Failed += tree.Failed
	total.Diagnostics += tree.Diagnostics
	return nil
}

// printReport writes one line per diagnostic in the file:line:col form
// editors understand.
func printReport(w io.Writer, f *core.FileReport) {
	if f.Error != "" {
		fmt.Fprintf(w, "%s: error: %s\n", f.Path, f.Error)
		return
	}
	if len(f.Diagnostics) == 0 {
		fmt.Fprintf(w, "%s: ok\n", f.Path)
		return
	}
	for _, d := range f.Diagnostics {
		line := fmt.Sprintf("%s:%d:%d: %s: %s", f.Path, d.Line, d.Column, d.Kind, d.Message)
		if d.Suggestion != "" {
			line += fmt.Sprintf(" (did you mean %s?)", d.Suggestion)
		}
		fmt.Fprintln(w, line)
	}
}
