// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only lexicon tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/lexservice"
	"github.com/starford/lexicon/internal/network"
)

const (
	categoriesURI     = "lexicon://categories"
	snapshotFormatURI = "lexicon://snapshot-format"

	defaultTop   = 10
	defaultLimit = 20
)

// Server wraps the MCP server with lexicon tools.
type Server struct {
	mcp *server.MCPServer
	svc *lexservice.Service
}

// New creates a new MCP server with all lexicon tools registered.
func New(svc *lexservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lexicon",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_network_summary",
		mcp.WithDescription("Summarize the concept network of the current snapshot: "+
			"generation, concept and edge counts, concepts per category, the heaviest edge "+
			"and the fittest living words."),
		mcp.WithNumber("top", mcp.Description("Number of living words to include (default 10)")),
	), s.getNetworkSummary)

	s.mcp.AddTool(mcp.NewTool("get_concept",
		mcp.WithDescription("Get one concept: its count, partner count, category, the "+
			"compound words that mention it and its edges."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Concept id, e.g. water")),
	), s.getConcept)

	s.mcp.AddTool(mcp.NewTool("search_words",
		mcp.WithDescription("Search the living vocabulary by word, meaning or category."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchWords)

	s.mcp.AddTool(mcp.NewTool("list_generations",
		mcp.WithDescription("List archived snapshots, newest first, with their generation, "+
			"checksum and network size."),
		mcp.WithNumber("limit", mcp.Description("Max rows (default 20)")),
	), s.listGenerations)

	s.mcp.AddTool(mcp.NewTool("get_snapshot_format",
		mcp.WithDescription("Returns the snapshot document format and how the concept "+
			"network is derived from it."),
	), s.getSnapshotFormat)

	s.mcp.AddResource(
		mcp.NewResource(categoriesURI, "Concept Categories",
			mcp.WithResourceDescription("The ordered category table used to classify concepts."),
			mcp.WithMIMEType("application/json"),
		),
		s.readCategoriesResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(snapshotFormatURI, "Snapshot Format",
			mcp.WithResourceDescription("Structure of the snapshot document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSnapshotFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError keeps failure text short; snapshot parse details stay server-side.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrSourceUnavailable), errors.Is(err, apperr.ErrMalformedSnapshot):
		return mcp.NewToolResultError("snapshot unavailable")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) getNetworkSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.Summary(ctx, req.GetInt("top", defaultTop))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(sum)
}

func (s *Server) getConcept(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.Concept(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("concept not found: %s", id)), nil
		}
		return toolError(err), nil
	}
	return jsonResult(detail)
}

func (s *Server) searchWords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", defaultLimit))
	if err != nil {
		return toolError(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no words found"), nil
	}
	return jsonResult(results)
}

func (s *Server) listGenerations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.History(ctx, req.GetInt("limit", defaultLimit))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(rows)
}

func (s *Server) getSnapshotFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SnapshotFormat), nil
}

type categoryDoc struct {
	Name  network.Category `json:"name"`
	Words []string         `json:"words"`
}

// categoryTable renders the category table in scan order; unknown is listed
// last with no vocabulary.
func categoryTable() []categoryDoc {
	cats := network.Categories()
	out := make([]categoryDoc, 0, len(cats))
	for _, c := range cats {
		words := network.CategoryWords(c)
		if words == nil {
			words = []string{}
		}
		out = append(out, categoryDoc{Name: c, Words: words})
	}
	return out
}

func (s *Server) readCategoriesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(categoryTable(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      categoriesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readSnapshotFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      snapshotFormatURI,
			MIMEType: "text/markdown",
			Text:     SnapshotFormat,
		},
	}, nil
}
