package mcp

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/braces/internal/config"
	"github.com/standardbeagle/braces/internal/core"
	bracesdebug "github.com/standardbeagle/braces/internal/debug"
	"github.com/standardbeagle/braces/internal/version"
)

// Tool names
const (
	ToolMatchBrace     = "match_brace"
	ToolEnclosingScope = "enclosing_scope"
	ToolFindParen      = "find_paren"
	ToolCheckBraces    = "check_braces"
	ToolInfo           = "info"
)

// Server exposes the brace engine over MCP stdio.
type Server struct {
	engine           *core.Engine
	ownsEngine       bool
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
}

// NewServer creates an MCP server around engine. A nil engine is created
// from cfg and closed with the server.
func NewServer(engine *core.Engine, cfg *config.Config) (*Server, error) {
	// File-based logging keeps stdio clean for the protocol
	diagnosticLogger := NewDiagnosticLogger(true)

	ownsEngine := false
	if engine == nil {
		var err error
		engine, err = core.NewEngine(cfg)
		if err != nil {
			diagnosticLogger.Close()
			return nil, err
		}
		ownsEngine = true
	}
	if cfg == nil {
		cfg = engine.Config()
	}

	s := &Server{
		engine:           engine,
		ownsEngine:       ownsEngine,
		cfg:              cfg,
		diagnosticLogger: diagnosticLogger,
	}
	diagnosticLogger.Printf("MCP server initialized for project root %s", cfg.Project.Root)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "braces-mcp-server",
		Version: version.Info(),
	}, nil)
	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolInfo,
		Description: "Get help for a tool. Use 'info' for an overview, 'info <tool>' for details, 'info languages' for supported languages, 'info cache' for token cache statistics and 'info version' for build info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name, 'languages' or 'version'",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolMatchBrace,
		Description: "Find the brace, bracket or tag adjacent to a caret and its matching partner. Returns the partner's position and where 'go to matching brace' would move the caret.",
		InputSchema: documentSchema(nil),
	}, s.handleMatchBrace)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolEnclosingScope,
		Description: "Find the innermost structural block (e.g. {...}, <div>...</div>) that encloses a caret.",
		InputSchema: documentSchema(nil),
	}, s.handleEnclosingScope)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolFindParen,
		Description: "Search left or right from a caret for an enclosing parenthesis. 'left'/'right' find the innermost unbalanced one, 'leftmost'/'rightmost' the outermost.",
		InputSchema: documentSchema(map[string]*jsonschema.Schema{
			"mode": {
				Type:        "string",
				Enum:        []any{core.ParenLeft, core.ParenLeftmost, core.ParenRight, core.ParenRightmost},
				Description: "Search direction",
			},
			"paren_type": {
				Type:        "string",
				Description: "Token type to search for instead of the language's parenthesis (e.g. \"[\")",
			},
		}, "mode"),
	}, s.handleFindParen)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolCheckBraces,
		Description: "Report unbalanced braces and mismatched tags in a file, a buffer or a whole directory tree.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File or directory, relative to the project root (default: project root)",
				},
				"content": {
					Type:        "string",
					Description: "Buffer to check instead of the file on disk",
				},
				"language": {
					Type:        "string",
					Description: "Language name overriding detection by extension",
				},
				"all_files": {
					Type:        "boolean",
					Description: "Include balanced files in directory reports",
				},
			},
		},
	}, s.handleCheckBraces)
}

// documentSchema is the input schema shared by caret-based tools.
func documentSchema(extra map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"file": {
			Type:        "string",
			Description: "File path, relative to the project root or absolute",
		},
		"position": {
			Types:       []string{"string", "integer"},
			Description: "Caret as a byte offset or \"LINE:COL\" (1-based)",
		},
		"language": {
			Type:        "string",
			Description: "Language name overriding detection by extension",
		},
		"content": {
			Type:        "string",
			Description: "Unsaved buffer content to use instead of the file on disk",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"file", "position"}, required...),
	}
}

// recoverFromPanic provides panic recovery middleware for MCP operations
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Printf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", debug.Stack())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
		bracesdebug.LogMCP("%s failed: %v", operation, err)
		return createErrorResponseWithContext(operation, err, map[string]interface{}{
			"timestamp":    time.Now().Format(time.RFC3339),
			"project_root": s.cfg.Project.Root,
		})
	}
	return result, nil
}

// Start serves MCP over stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown releases the engine (when owned) and closes the diagnostic log.
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")
	err := s.Close()
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	s.diagnosticLogger.Close()
	return err
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case ToolMatchBrace:
		return s.handleMatchBrace
	case ToolEnclosingScope:
		return s.handleEnclosingScope
	case ToolFindParen:
		return s.handleFindParen
	case ToolCheckBraces:
		return s.handleCheckBraces
	case ToolInfo:
		return s.handleInfo
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}

// Close releases the engine if the server created it.
func (s *Server) Close() error {
	if s.ownsEngine && s.engine != nil {
		s.engine.Close()
		s.engine = nil
	}
	return nil
}
