package a11ycheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/webyes/a11ycheck/report"
)

// RegisterMCP registers audit tools on an MCP server.
func (c *Checker) RegisterMCP(srv *mcp.Server) {
	c.registerAuditTool(srv)
	c.registerHistoryTool(srv)
	c.registerGuidelinesTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type auditToolReq struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

func (c *Checker) registerAuditTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_audit",
		Description: "Run a multi-viewport accessibility audit against a URL and return WCAG-enriched issues per device.",
		InputSchema: inputSchema(map[string]any{
			"url":    map[string]any{"type": "string", "description": "Page URL to audit"},
			"format": map[string]any{"type": "string", "description": "Output format: json (default) or markdown"},
		}, []string{"url"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r auditToolReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		if r.URL == "" {
			return toolError(errors.New("url is required")), nil
		}

		result, err := c.Audit(ctx, r.URL)
		if err != nil {
			return toolError(err), nil
		}

		if r.Format == "markdown" {
			return textResult(report.Markdown(result)), nil
		}
		data, err := report.MarshalResult(result)
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return textResult(string(data)), nil
	})
}

type historyToolReq struct {
	Limit int `json:"limit"`
}

func (c *Checker) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_history",
		Description: "List recent audit runs (newest first) from the local run history.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum runs to return (default 20)"},
		}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if c.store == nil {
			return toolError(errors.New("history disabled")), nil
		}
		var r historyToolReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		runs, err := c.store.Recent(ctx, r.Limit)
		if err != nil {
			return toolError(err), nil
		}
		data, _ := json.Marshal(runs)
		return textResult(string(data)), nil
	})
}

func (c *Checker) registerGuidelinesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "a11y_guidelines",
		Description: "Return the loaded WCAG guideline taxonomy keyed by rule identifier.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(c.Guidelines(ctx))
		if err != nil {
			return toolError(fmt.Errorf("marshal: %w", err)), nil
		}
		return textResult(string(data)), nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}
