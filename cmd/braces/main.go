package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/core"
	"github.com/standardbeagle/braces/internal/debug"
	"github.com/standardbeagle/braces/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	rootFlag := c.String("root")

	cfg, err := config.LoadWithRoot(configPath, rootFlag)
	if err != nil {
		if configPath == "" {
			configPath = config.FileName
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if c.IsSet("max-steps") {
		cfg.Matching.MaxSteps = c.Int("max-steps")
	}
	if c.IsSet("strict-tags") {
		cfg.Matching.StrictTags = c.String("strict-tags")
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Check.Exclude = config.DeduplicatePatterns(append(cfg.Check.Exclude, excludes...))
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Check.Include = includes
	}
	return cfg, nil
}

// newEngine loads the configuration and builds an engine for a command.
func newEngine(c *cli.Context) (*core.Engine, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	engine, err := core.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return engine, nil
}

func newApp() *cli.App {
	jsonFlag := &cli.BoolFlag{
		Name:    "json",
		Aliases: []string{"j"},
		Usage:   "Output as JSON",
	}
	languageFlag := &cli.StringFlag{
		Name:    "language",
		Aliases: []string{"l"},
		Usage:   "Language name (overrides detection by file extension)",
	}

	return &cli.App{
		Name:                   "braces",
		Usage:                  "Brace, bracket and tag matching for source files",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: " + config.FileName + " in the project root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-steps",
				Usage: "Token budget per scan, 0 = unbounded (overrides config)",
			},
			&cli.StringFlag{
				Name:  "strict-tags",
				Usage: "Tag strictness: auto, on or off (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only check files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns (e.g., --exclude '**/testdata/**')",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
			&cli.StringFlag{
				Name:  "debug-log",
				Usage: "Write debug logging to `FILE` (\"-\" for a timestamped file in the temp directory)",
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("debug-log") {
				path := c.String("debug-log")
				if path == "-" {
					path = ""
				}
				logPath, err := debug.InitDebugLogFile(path)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				debug.EnableDebug = "true"
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", logPath)
				return nil
			}
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "match",
				Aliases:   []string{"m"},
				Usage:     "Find the brace matching the one at a caret",
				ArgsUsage: "FILE POSITION",
				Flags:     []cli.Flag{jsonFlag, languageFlag},
				Action:    matchCommand,
			},
			{
				Name:      "scope",
				Usage:     "Find the structural block enclosing a caret",
				ArgsUsage: "FILE POSITION",
				Flags:     []cli.Flag{jsonFlag, languageFlag},
				Action:    scopeCommand,
			},
			{
				Name:      "paren",
				Usage:     "Search for an unbalanced parenthesis left or right of a caret",
				ArgsUsage: "FILE POSITION",
				Flags: []cli.Flag{
					jsonFlag,
					languageFlag,
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "left, leftmost, right or rightmost",
						Value:   core.ParenLeft,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Token type to search for instead of the language's parenthesis",
					},
				},
				Action: parenCommand,
			},
			{
				Name:      "check",
				Aliases:   []string{"c"},
				Usage:     "Report unbalanced braces and mismatched tags (exit status 1 when any are found)",
				ArgsUsage: "[PATH...]",
				Flags: []cli.Flag{
					jsonFlag,
					languageFlag,
					&cli.BoolFlag{
						Name:  "all",
						Usage: "List balanced files too",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Print per-language and per-kind statistics",
					},
				},
				Action: checkCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Check a tree, then re-check files as they change",
				ArgsUsage: "[DIR]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the brace tools over MCP (stdio)",
				Action: mcpCommand,
			},
			{
				Name:   "languages",
				Usage:  "List supported languages",
				Flags:  []cli.Flag{jsonFlag},
				Action: languagesCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as JSON",
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Validate the configuration file",
						Action: configValidateCommand,
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
