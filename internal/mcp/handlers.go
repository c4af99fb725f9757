package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/braces/internal/core"
	"github.com/standardbeagle/braces/internal/version"
)

// resolvePath makes path absolute against the project root.
func (s *Server) resolvePath(path string) string {
	if path == "" {
		return s.cfg.Project.Root
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.cfg.Project.Root, path)
}

// openDocument loads the addressed document and resolves its caret.
func (s *Server) openDocument(ctx context.Context, p DocumentParams) (*core.Document, int, error) {
	if strings.TrimSpace(p.File) == "" {
		return nil, 0, errors.New("file is required")
	}
	if p.Position == "" {
		return nil, 0, errors.New("position is required")
	}

	path := s.resolvePath(p.File)
	var (
		doc *core.Document
		err error
	)
	if p.Content != nil {
		doc, err = s.engine.Load(ctx, path, p.Language, []byte(*p.Content))
	} else {
		doc, err = s.engine.Open(ctx, path, p.Language)
	}
	if err != nil {
		return nil, 0, err
	}

	caret, err := doc.Resolve(string(p.Position))
	if err != nil {
		return nil, 0, err
	}
	doc.Path = p.File
	return doc, caret, nil
}

func (s *Server) handleMatchBrace(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolMatchBrace, func() (*mcp.CallToolResult, error) {
		var p DocumentParams
		warnings, err := decodeParams(req.Params.Arguments, documentFields, &p)
		if err != nil {
			return nil, err
		}
		doc, caret, err := s.openDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		res, err := s.engine.Match(doc, caret)
		if err != nil {
			return nil, err
		}
		return createResponseWithWarnings(res, warnings)
	})
}

func (s *Server) handleEnclosingScope(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolEnclosingScope, func() (*mcp.CallToolResult, error) {
		var p DocumentParams
		warnings, err := decodeParams(req.Params.Arguments, documentFields, &p)
		if err != nil {
			return nil, err
		}
		doc, caret, err := s.openDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		res, err := s.engine.Scope(doc, caret)
		if err != nil {
			return nil, err
		}
		return createResponseWithWarnings(res, warnings)
	})
}

func (s *Server) handleFindParen(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindParen, func() (*mcp.CallToolResult, error) {
		var p ParenParams
		warnings, err := decodeParams(req.Params.Arguments, parenFields, &p)
		if err != nil {
			return nil, err
		}
		mode := strings.ToLower(strings.TrimSpace(p.Mode))
		if mode == "" {
			return nil, errors.New("mode is required")
		}
		doc, caret, err := s.openDocument(ctx, p.DocumentParams)
		if err != nil {
			return nil, err
		}
		res, err := s.engine.Paren(doc, caret, mode, p.ParenType)
		if err != nil {
			return nil, err
		}
		return createResponseWithWarnings(res, warnings)
	})
}

func (s *Server) handleCheckBraces(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolCheckBraces, func() (*mcp.CallToolResult, error) {
		var p CheckParams
		warnings, err := decodeParams(req.Params.Arguments, checkFields, &p)
		if err != nil {
			return nil, err
		}
		path := s.resolvePath(p.Path)

		if p.Content != nil {
			if p.Path == "" {
				return nil, errors.New("path is required with content (it selects the language)")
			}
			doc, err := s.engine.Load(ctx, path, p.Language, []byte(*p.Content))
			if err != nil {
				return nil, err
			}
			doc.Path = p.Path
			return createResponseWithWarnings(s.engine.CheckDocument(doc), warnings)
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			doc, err := s.engine.Open(ctx, path, p.Language)
			if err != nil {
				return nil, err
			}
			doc.Path = p.Path
			return createResponseWithWarnings(s.engine.CheckDocument(doc), warnings)
		}

		report, err := s.engine.CheckTree(ctx, path)
		if err != nil {
			return nil, err
		}
		if !p.AllFiles {
			problems := report.Files[:0:0]
			for _, f := range report.Files {
				if !f.OK() {
					problems = append(problems, f)
				}
			}
			report.Files = problems
		}
		return createResponseWithWarnings(report, warnings)
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolInfo, func() (*mcp.CallToolResult, error) {
		var p InfoParams
		warnings, err := decodeParams(req.Params.Arguments, infoFields, &p)
		if err != nil {
			return nil, err
		}

		switch tool := strings.ToLower(strings.TrimSpace(p.Tool)); tool {
		case "":
			return createResponseWithWarnings(map[string]interface{}{
				"server":       "braces-mcp-server",
				"version":      version.Info(),
				"project_root": s.cfg.Project.Root,
				"tools":        toolOverview(),
				"positions":    "Carets are byte offsets or 1-based \"LINE:COL\" (columns count bytes).",
			}, warnings)

		case "version":
			return createResponseWithWarnings(map[string]interface{}{
				"server_version": version.FullInfo(),
				"build_id":       version.BuildID(),
				"go_version":     runtime.Version(),
				"platform":       runtime.GOOS + "/" + runtime.GOARCH,
				"log_file":       s.diagnosticLogger.Path(),
			}, warnings)

		case "languages":
			langs := s.engine.Registry().Languages()
			out := make([]map[string]interface{}, 0, len(langs))
			for _, l := range langs {
				out = append(out, map[string]interface{}{
					"name":       l.Name,
					"extensions": l.Extensions,
					"source":     l.Source,
				})
			}
			return createResponseWithWarnings(map[string]interface{}{"languages": out}, warnings)

		case "cache":
			return createResponseWithWarnings(s.engine.Cache().GetCacheInfo(), warnings)

		default:
			for _, t := range toolOverview() {
				if t["name"] == tool {
					t["example"] = getOperationHelp(tool)
					return createResponseWithWarnings(t, warnings)
				}
			}
			return nil, fmt.Errorf("unknown tool %q", p.Tool)
		}
	})
}

func toolOverview() []map[string]string {
	return []map[string]string{
		{"name": ToolMatchBrace, "description": "Matching partner of the brace or tag next to a caret"},
		{"name": ToolEnclosingScope, "description": "Innermost structural block around a caret"},
		{"name": ToolFindParen, "description": "Directional search for an unbalanced parenthesis"},
		{"name": ToolCheckBraces, "description": "Balance diagnostics for a file, buffer or directory"},
		{"name": ToolInfo, "description": "This help"},
	}
}
