package mcpserver

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/rentr/internal/listing"
)

func stepIDs() string {
	var ids []string
	for _, s := range listing.Steps() {
		ids = append(ids, s.ID())
	}
	return strings.Join(ids, ", ")
}

// registerTools registers the listing tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("listing-status",
			mcp.WithDescription("Show the current wizard step, the property id, saved steps and media slots"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-set",
			mcp.WithDescription("Replace the form data of one step. Fields not given are cleared."),
			mcp.WithString("step", mcp.Required(),
				mcp.Description("Step id, one of: "+stepIDs()),
			),
			mcp.WithString("data", mcp.Required(),
				mcp.Description("JSON object with the step's fields, e.g. {\"monthlyRent\": 35000, \"maintenance\": \"Included\", \"securityDeposit\": 70000}"),
			),
		),
		s.handleSet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-advance",
			mcp.WithDescription("Validate and save the current step, then move to the next one. On the review step this completes the listing."),
		),
		s.handleAdvance,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-retreat",
			mcp.WithDescription("Go back one step without saving"),
		),
		s.handleRetreat,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-jump",
			mcp.WithDescription("Go back to an earlier step"),
			mcp.WithString("step", mcp.Required(),
				mcp.Description("Step id of the current or an earlier step"),
			),
		),
		s.handleJump,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-upload",
			mcp.WithDescription("Upload a local image into a media slot. Requires the listing to be created first."),
			mcp.WithString("slot", mcp.Required(),
				mcp.Description("Media field name from listing-status, e.g. kitchen or bedroom2"),
			),
			mcp.WithString("path", mcp.Required(),
				mcp.Description("Path of the local image file"),
			),
		),
		s.handleUpload,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-preview",
			mcp.WithDescription("Render the whole draft as markdown"),
		),
		s.handlePreview,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("listing-rules",
			mcp.WithDescription("List the validation rules of a step"),
			mcp.WithString("step",
				mcp.Description("Step id; defaults to the current step"),
			),
		),
		s.handleRules,
	)
}
