package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools.
// Tool errors are reported in the result with IsError set so the client
// model can see them and correct its call.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createErrorResponseWithContext(operation, err, nil)
}

// createErrorResponseWithContext adds tool help and caller context to an error response.
func createErrorResponseWithContext(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// createResponseWithWarnings creates an MCP response with warnings included
func createResponseWithWarnings(data interface{}, warnings []string) (*mcp.CallToolResult, error) {
	response, err := createJSONResponse(data)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		addWarningsToResponse(response, warnings)
	}
	return response, nil
}

// addWarningsToResponse adds a "warnings" field to the JSON body of a
// response, falling back to appending plain text.
func addWarningsToResponse(result *mcp.CallToolResult, warnings []string) {
	if result == nil || len(warnings) == 0 || len(result.Content) == 0 {
		return
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return
	}

	var responseData map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &responseData); err == nil {
		responseData["warnings"] = warnings
		if updated, err := json.Marshal(responseData); err == nil {
			result.Content[0] = &mcp.TextContent{Text: string(updated)}
			return
		}
	}

	warningText := "\n\nWarnings:\n"
	for _, warning := range warnings {
		warningText += fmt.Sprintf("- %s\n", warning)
	}
	textContent.Text += warningText
}

// getOperationHelp returns a one-line usage hint for a tool.
func getOperationHelp(operation string) string {
	switch operation {
	case ToolMatchBrace:
		return `{"file": "src/main.go", "position": "12:8"}`
	case ToolEnclosingScope:
		return `{"file": "src/main.go", "position": 240}`
	case ToolFindParen:
		return `{"file": "src/main.go", "position": "3:14", "mode": "left"}`
	case ToolCheckBraces:
		return `{"path": "src"} or {"path": "page.html", "content": "<div></span>"}`
	case ToolInfo:
		return `{"tool": "match_brace"} or {"tool": "languages"}`
	}
	return ""
}
