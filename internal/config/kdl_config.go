package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	lcierrors "github.com/standardbeagle/braces/internal/errors"
)

// LoadKDL loads FileName from projectRoot. It returns nil, nil when the
// file does not exist.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(kdlPath, projectRoot)
}

// LoadKDLFile parses the config at path. A relative project root in the file
// is resolved against the file's directory; a missing one defaults to
// defaultRoot.
func LoadKDLFile(path, defaultRoot string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lcierrors.NewFileError("read", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, lcierrors.NewConfigError(filepath.Base(path), "", err)
	}

	if cfg.Project.Root != "" {
		if !filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Join(filepath.Dir(path), cfg.Project.Root)
		}
		cfg.Project.Root = filepath.Clean(cfg.Project.Root)
	} else {
		cfg.Project.Root = absOrSelf(defaultRoot)
	}
	return cfg, nil
}

// parseKDL reads the document model:
//
//	project { root "." }
//	matching { max_steps 100000; strict_tags "auto" }
//	check {
//	    workers 4
//	    max_file_size "2MB"
//	    respect_gitignore true
//	    include "**/*.go" "**/*.html"
//	    exclude { "**/testdata/**" }
//	}
//	cache { max_entries 256; ttl_seconds 300 }
//	watch { debounce_ms 200 }
//	languages_dir ".braces/languages"
func parseKDL(content string) (*Config, error) {
	cfg := Default("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "matching":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_steps":
					if v, ok := firstIntArg(cn); ok {
						cfg.Matching.MaxSteps = v
					}
				case "strict_tags":
					if s, ok := firstStringArg(cn); ok {
						cfg.Matching.StrictTags = strings.ToLower(s)
					} else if b, ok := firstBoolArg(cn); ok {
						cfg.Matching.StrictTags = StrictTagsOff
						if b {
							cfg.Matching.StrictTags = StrictTagsOn
						}
					}
				}
			}
		case "check":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Check.Workers = v
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Check.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return nil, fmt.Errorf("check.max_file_size %q: %w", s, err)
						}
						cfg.Check.MaxFileSize = sz
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Check.RespectGitignore = b
					} else if s, ok := firstStringArg(cn); ok {
						cfg.Check.RespectGitignore = parseBool(s)
					}
				case "include":
					cfg.Check.Include = append(cfg.Check.Include, collectStringArgs(cn)...)
				case "exclude":
					cfg.Check.Exclude = append(cfg.Check.Exclude, collectStringArgs(cn)...)
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxEntries = v
					}
				case "ttl_seconds":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.TTLSeconds = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "languages_dir":
			if s, ok := firstStringArg(n); ok {
				cfg.LanguagesDir = s
			}
		default:
			log.Printf("WARNING: unknown node '%s' in %s", nodeName(n), FileName)
		}
	}

	cfg.Check.Exclude = DeduplicatePatterns(cfg.Check.Exclude)
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both `exclude "a" "b"` and the block form
// `exclude { "a"; "b" }`, where each pattern is a child node name.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) > 0 || len(n.Children) == 0 {
		return out
	}
	for _, child := range n.Children {
		if s, ok := firstStringArg(child); ok {
			out = append(out, s)
		} else if child.Name != nil {
			if s, ok := child.Name.Value.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

func getDefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.hg/**",
		"**/.svn/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/dist/**",
		"**/build/**",
		"**/target/**",
		"**/__pycache__/**",
		"**/*.min.js",
		"**/*.min.css",
	}
}
