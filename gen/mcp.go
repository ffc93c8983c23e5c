package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPConfig configures the MCP-backed generator
type MCPConfig struct {
	// Name of the MCP tool invoked for generation; falls back to the
	// MCP_TOOL_NAME environment variable, then "course.generate_draft"
	ToolName string

	// Model identifier forwarded to the tool; falls back to MCP_MODEL
	Model string

	// Per-call timeout; defaults to 30s
	Timeout time.Duration

	// Number of retries after a failed call; defaults to 2
	RetryCount int

	// Initial retry backoff, doubled per attempt; defaults to 500ms
	RetryBackoff time.Duration
}

// MCPGenerator calls an external MCP server to produce draft courses.
// The tool is expected to return a JSON Draft; plain text responses are
// accepted and wrapped as the draft summary.
type MCPGenerator struct {
	client *client.StdioMCPClient
	config MCPConfig
	logger *log.Logger
}

// NewMCPGenerator spawns a stdio MCP client against serverPath. An empty
// path falls back to the MCP_SERVER_PATH environment variable.
func NewMCPGenerator(serverPath string, config *MCPConfig) (*MCPGenerator, error) {
	if serverPath == "" {
		serverPath = os.Getenv("MCP_SERVER_PATH")
	}
	if serverPath == "" {
		return nil, fmt.Errorf("no MCP server configured: pass a path or set MCP_SERVER_PATH")
	}

	cfg := MCPConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.ToolName == "" {
		cfg.ToolName = os.Getenv("MCP_TOOL_NAME")
	}
	if cfg.ToolName == "" {
		cfg.ToolName = "course.generate_draft"
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("MCP_MODEL")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = 2
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}

	mcpClient, err := client.NewStdioMCPClient(serverPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP stdio client: %w", err)
	}

	logger := log.New(os.Stdout, "[PHICORE] ", log.LstdFlags)
	logger.Printf("MCP generator initialized with server: %s, tool: %s", serverPath, cfg.ToolName)

	return &MCPGenerator{
		client: mcpClient,
		config: cfg,
		logger: logger,
	}, nil
}

// GenerateDraft invokes the configured MCP tool with retry and backoff
func (g *MCPGenerator) GenerateDraft(ctx context.Context, req DraftRequest) (*Draft, error) {
	requestID := uuid.NewString()

	callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	request := mcp.CallToolRequest{}
	request.Params.Name = g.config.ToolName
	request.Params.Arguments = map[string]interface{}{
		"model":               g.config.Model,
		"document_version_id": req.DocumentVersionID,
		"document_text":       req.DocumentText,
		"requested_by":        req.RequestedBy,
		"request_id":          requestID,
	}

	var result *mcp.CallToolResult
	var err error
	var lastError error

	for attempt := 0; attempt <= g.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoffTime := g.config.RetryBackoff * time.Duration(1<<(attempt-1))
			time.Sleep(backoffTime)
			g.logger.Printf("retrying draft generation (attempt %d, request %s): %v", attempt, requestID, lastError)
		}

		result, err = g.client.CallTool(callCtx, request)
		lastError = err

		if err == nil {
			break
		}

		// Don't retry if context is done
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("draft generation timed out or canceled: %w", err)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("draft generation failed after %d attempts: %w", g.config.RetryCount+1, err)
	}

	return parseDraftResult(result)
}

// Close shuts down the MCP client
func (g *MCPGenerator) Close() error {
	return g.client.Close()
}

// parseDraftResult extracts a Draft from the MCP tool response
func parseDraftResult(result *mcp.CallToolResult) (*Draft, error) {
	if result.IsError {
		return nil, fmt.Errorf("MCP tool returned an error: %v", result.Result)
	}

	outputStr := ""
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			outputStr += textContent.Text
		}
	}

	if outputStr == "" {
		return nil, fmt.Errorf("MCP tool returned no text content")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(outputStr), &draft); err == nil && draft.Title != "" {
		return &draft, nil
	}

	// Tool returned prose instead of a JSON draft; keep it as the summary
	return &Draft{
		Title:   "Generated draft course",
		Summary: outputStr,
	}, nil
}
