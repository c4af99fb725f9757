package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/braces/internal/core"
	"github.com/standardbeagle/braces/pkg/pathutil"
)

// openQuery loads FILE and resolves POSITION for the caret commands.
func openQuery(c *cli.Context) (*core.Engine, *core.Document, int, error) {
	if c.NArg() != 2 {
		return nil, nil, 0, cli.Exit(fmt.Sprintf("usage: braces %s FILE POSITION (POSITION is OFFSET or LINE:COL)", c.Command.Name), 2)
	}
	engine, err := newEngine(c)
	if err != nil {
		return nil, nil, 0, err
	}
	doc, err := engine.Open(c.Context, c.Args().Get(0), c.String("language"))
	if err != nil {
		engine.Close()
		return nil, nil, 0, err
	}
	caret, err := doc.Resolve(c.Args().Get(1))
	if err != nil {
		engine.Close()
		return nil, nil, 0, err
	}
	doc.Path = pathutil.ToDisplay(doc.Path, engine.Config().Project.Root)
	return engine, doc, caret, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func at(p core.Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func matchCommand(c *cli.Context) error {
	engine, doc, caret, err := openQuery(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Match(doc, caret)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}

	w := c.App.Writer
	switch {
	case !res.Found:
		fmt.Fprintf(w, "%s:%s: no brace at caret\n", res.Path, at(res.Caret))
	case res.Matched:
		direction := "backward"
		if res.Forward {
			direction = "forward"
		}
		fmt.Fprintf(w, "%s:%s: %q matches %q at %s (%s, %d steps)\n",
			res.Path, at(res.Brace.Start), res.Brace.Text, res.Match.Text, at(res.Match.Start), direction, res.Steps)
	default:
		fmt.Fprintf(w, "%s:%s: %q has no match (%s)\n", res.Path, at(res.Brace.Start), res.Brace.Text, res.Reason)
	}
	return nil
}

func scopeCommand(c *cli.Context) error {
	engine, doc, caret, err := openQuery(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Scope(doc, caret)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}

	w := c.App.Writer
	switch {
	case !res.Found:
		fmt.Fprintf(w, "%s:%s: not inside a block\n", res.Path, at(res.Caret))
	case res.Closed:
		fmt.Fprintf(w, "%s: %q at %s .. %q at %s\n", res.Path, res.Open.Text, at(res.Open.Start), res.Close.Text, at(res.Close.Start))
	default:
		fmt.Fprintf(w, "%s: %q at %s is never closed\n", res.Path, res.Open.Text, at(res.Open.Start))
	}
	return nil
}

func parenCommand(c *cli.Context) error {
	engine, doc, caret, err := openQuery(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Paren(doc, caret, c.String("mode"), c.String("type"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}

	if !res.Found {
		fmt.Fprintf(c.App.Writer, "%s:%s: no %s parenthesis\n", res.Path, at(res.Caret), res.Mode)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s:%s: %q\n", res.Path, at(res.Paren.Start), res.Paren.Text)
	return nil
}
