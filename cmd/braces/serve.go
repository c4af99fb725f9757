package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/debug"
	"github.com/standardbeagle/braces/internal/mcp"
	"github.com/standardbeagle/braces/internal/watch"
)

func watchCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	root := engine.Config().Project.Root
	if c.NArg() > 0 {
		root = c.Args().First()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.CheckTree(ctx, root)
	if err != nil {
		return err
	}
	asJSON := c.Bool("json")
	enc := json.NewEncoder(c.App.Writer)
	var mu sync.Mutex

	for _, f := range report.Files {
		if f.OK() {
			continue
		}
		if asJSON {
			_ = enc.Encode(f)
		} else {
			printReport(c.App.Writer, f)
		}
	}
	log.Printf("Checked %d files (%d problems), watching %s for changes", report.Checked, report.Diagnostics, root)

	w, err := watch.New(engine, root, func(ev watch.Event) {
		mu.Lock()
		defer mu.Unlock()
		if asJSON {
			out := map[string]interface{}{"path": ev.Path, "event": ev.Type.String()}
			if ev.Report != nil {
				out["report"] = ev.Report
			}
			if ev.Err != nil {
				out["error"] = ev.Err.Error()
			}
			_ = enc.Encode(out)
			return
		}
		switch {
		case ev.Type == watch.EventRemove:
			fmt.Fprintf(c.App.Writer, "%s: removed\n", ev.Path)
		case ev.Err != nil:
			fmt.Fprintf(c.App.Writer, "%s: error: %v\n", ev.Path, ev.Err)
		default:
			printReport(c.App.Writer, ev.Report)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return err
	}

	<-ctx.Done()
	stats := w.GetStats()
	if err := w.Stop(); err != nil {
		log.Printf("Error closing file watcher: %v", err)
	}
	log.Printf("File watcher stopped after %d events (%d errors)", stats.EventsProcessed, stats.ErrorCount)
	return nil
}

func mcpCommand(c *cli.Context) error {
	// Stdio belongs to the protocol from here on
	debug.SetMCPMode(true)

	engine, err := newEngine(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}
	defer engine.Close()

	server, err := mcp.NewServer(engine, engine.Config())
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		debug.LogMCP("Starting MCP server with stdio transport...")
		errChan <- server.Start(ctx)
	}()

	var runErr error
	select {
	case runErr = <-errChan:
	case sig := <-sigChan:
		debug.LogMCP("Received signal %v, shutting down gracefully...", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()
		select {
		case runErr = <-errChan:
		case <-shutdownTimer.C:
			debug.LogMCP("Graceful shutdown timeout, closing stdin")
			// Closing stdin breaks the stdio transport's read loop
			os.Stdin.Close()
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		debug.LogMCP("Shutdown error: %v", err)
	}
	if runErr != nil && ctx.Err() == nil {
		return debug.Fatal("MCP server error: %v\n", runErr)
	}
	return nil
}

func languagesCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	langs := engine.Registry().Languages()
	if c.Bool("json") {
		type entry struct {
			Name       string   `json:"name"`
			Extensions []string `json:"extensions"`
			Source     string   `json:"source"`
		}
		out := make([]entry, 0, len(langs))
		for _, l := range langs {
			out = append(out, entry{Name: l.Name, Extensions: l.Extensions, Source: l.Source})
		}
		return writeJSON(c.App.Writer, out)
	}

	for _, l := range langs {
		fmt.Fprintf(c.App.Writer, "%-12s %-40v %s\n", l.Name, l.Extensions, l.Source)
	}
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	return writeJSON(c.App.Writer, cfg)
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Configuration validation failed: %v", err), 1)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return cli.Exit(fmt.Sprintf("Configuration validation failed: %v", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "Configuration OK (root %s, %d workers, strict_tags %s)\n",
		cfg.Project.Root, cfg.Check.Workers, cfg.Matching.StrictTags)
	return nil
}
