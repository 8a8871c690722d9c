package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tobewise-cli/internal/query"
	"tobewise-cli/internal/version"
)

// Server exposes the quotation store over MCP so assistants can search
// and cite the local catalog.
type Server struct {
	engine    *query.Engine
	mcpServer *server.MCPServer
}

func NewServer(engine *query.Engine) *Server {
	s := &Server{engine: engine}

	s.mcpServer = server.NewMCPServer(
		"tobewise",
		version.GetMCPVersion(),
	)

	s.registerTools()
	return s
}

// Start starts the MCP server using stdio
func (s *Server) Start() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "search_quotes",
		Description: "Search quotations by author or subject, or use a reserved collection token ('Show All', 'Favorite Quotations', 'Top 100', 'Recently Added', 'Contributed By Me', 'Deleted'). Results come back in random order except 'Recently Added'.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search token: an author/subject substring or a reserved collection token",
				},
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Which field family the token matches against",
					"enum":        []string{"Author", "Subject"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 20)",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearchQuotes)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_quote",
		Description: "Get a single quotation by ID with all fields",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Quotation ID",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetQuote)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "count_quotes",
		Description: "Count quotations matching a query token and filter kind without returning them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search token: an author/subject substring or a reserved collection token",
				},
				"filter": map[string]interface{}{
					"type":        "string",
					"description": "Which field family the token matches against",
					"enum":        []string{"Author", "Subject"},
				},
			},
			Required: []string{"query"},
		},
	}, s.handleCountQuotes)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_authors",
		Description: "Get all distinct authors in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListAuthors)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_subjects",
		Description: "Get all distinct subject tags in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSubjects)
}
