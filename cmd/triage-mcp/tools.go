package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createProcessQueryTool returns the process_query tool definition
func createProcessQueryTool() mcp.Tool {
	return mcp.NewTool("process_query",
		mcp.WithDescription("Route a support query to the matching domain agent (HR, Tech, Finance) and return a grounded, cited answer"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The support question to process"),
		),
		mcp.WithBoolean("evaluate",
			mcp.Description("Also grade the answer for relevance, completeness, and accuracy (default: false)"),
		),
	)
}
