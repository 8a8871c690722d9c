package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"tobewise-cli/internal/model"
)

// handleSearchQuotes handles the search_quotes tool
func (s *Server) handleSearchQuotes(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	token, _ := arguments["query"].(string)
	if strings.TrimSpace(token) == "" {
		return mcp.NewToolResultError("Query is required"), nil
	}

	filter := model.FilterSubject
	if f, ok := arguments["filter"].(string); ok && f != "" {
		filter = model.FilterKind(f)
	}

	limit := 20
	if l, ok := arguments["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	quotes, err := s.engine.Shuffled(token, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	if len(quotes) == 0 {
		return mcp.NewToolResultText("No quotations found matching the search criteria."), nil
	}

	total := len(quotes)
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d quotations (showing %d):\n\n", total, len(quotes)))

	for i, q := range quotes {
		output.WriteString(fmt.Sprintf("**%d. %s**\n", i+1, q.Author))
		output.WriteString(fmt.Sprintf("ID: %d\n", q.ID))
		output.WriteString(fmt.Sprintf("> %s\n", q.QuoteText))

		if q.Subjects != "" {
			output.WriteString(fmt.Sprintf("Subjects: %s\n", q.Subjects))
		}

		if q.Favorite {
			output.WriteString("Favorite: yes\n")
		}

		output.WriteString("\n")
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleGetQuote handles the get_quote tool
func (s *Server) handleGetQuote(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	idFloat, ok := arguments["id"].(float64)
	if !ok {
		return mcp.NewToolResultError("Quotation ID is required and must be a number"), nil
	}
	id := int64(idFloat)

	quote, err := s.engine.GetByID(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get quotation: %v", err)), nil
	}
	if quote == nil {
		return mcp.NewToolResultError(fmt.Sprintf("No quotation with ID %d", id)), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("> %s\n\n", quote.QuoteText))
	output.WriteString(fmt.Sprintf("**Author:** %s\n", quote.Author))
	output.WriteString(fmt.Sprintf("**ID:** %d\n", quote.ID))

	if quote.Subjects != "" {
		output.WriteString(fmt.Sprintf("**Subjects:** %s\n", quote.Subjects))
	}

	if quote.ContributedBy != "" {
		output.WriteString(fmt.Sprintf("**Contributed By:** %s\n", quote.ContributedBy))
	}

	if quote.AuthorLink != "" {
		output.WriteString(fmt.Sprintf("**Author Link:** %s\n", quote.AuthorLink))
	}

	if quote.VideoLink != "" {
		output.WriteString(fmt.Sprintf("**Video Link:** %s\n", quote.VideoLink))
	}

	if quote.Favorite {
		output.WriteString("**Favorite:** yes\n")
	}

	if quote.Deleted {
		output.WriteString("**Deleted:** yes\n")
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleCountQuotes handles the count_quotes tool
func (s *Server) handleCountQuotes(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	token, _ := arguments["query"].(string)
	if strings.TrimSpace(token) == "" {
		return mcp.NewToolResultError("Query is required"), nil
	}

	filter := model.FilterSubject
	if f, ok := arguments["filter"].(string); ok && f != "" {
		filter = model.FilterKind(f)
	}

	count, err := s.engine.Count(token, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Count failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%d quotations match %q (%s)", count, token, filter)), nil
}

// handleListAuthors handles the list_authors tool
func (s *Server) handleListAuthors(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	authors, err := s.engine.Distinct(model.FilterAuthor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list authors: %v", err)), nil
	}
	if len(authors) == 0 {
		return mcp.NewToolResultText("No authors found."), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d authors:\n\n", len(authors)))
	for _, a := range authors {
		output.WriteString(fmt.Sprintf("- %s\n", a))
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleListSubjects handles the list_subjects tool
func (s *Server) handleListSubjects(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	subjects, err := s.engine.Distinct(model.FilterSubject)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list subjects: %v", err)), nil
	}
	if len(subjects) == 0 {
		return mcp.NewToolResultText("No subjects found."), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d subjects:\n\n", len(subjects)))
	for _, sub := range subjects {
		output.WriteString(fmt.Sprintf("- %s\n", sub))
	}

	return mcp.NewToolResultText(output.String()), nil
}
