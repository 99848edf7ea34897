package mcp

import (
	"context"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "kioku"
	serverVersion = "0.1.0"
)

// Server exposes the memory facade as MCP tools. Every tool resolves the
// caller's identity from the request context, delegates to the usecase and
// returns exactly one text payload; failures become descriptive text, never
// protocol-level errors, because the tool result is the only channel the
// transport offers.
type Server struct {
	uc        *memory.UseCase
	mcpServer *mcp.Server
}

// New creates an MCP server with all memory tools registered
func New(uc *memory.UseCase) *Server {
	s := &Server{
		uc: uc,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_memory",
		Description: "Store a new memory about the user, e.g. a preference, fact or decision worth remembering",
	}, s.addMemory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search the user's memories by free-text query",
	}, s.searchMemories)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_by_category",
		Description: "Find the user's memories belonging to a category (see get_memory_categories)",
	}, s.searchByCategory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_memory_categories",
		Description: "List the user's memory categories ranked by frequency. Counts are approximate, computed over a sample of recent memories",
	}, s.getMemoryCategories)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_relevant_context",
		Description: "Retrieve memories highly relevant to the current conversation topic, suitable for direct prompt injection",
	}, s.getRelevantContext)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_memory",
		Description: "Replace a memory's content while keeping its history. The store has no in-place edit, so this deletes and recreates the record",
	}, s.updateMemory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_memories",
		Description: "Delete one or more memories by ID. IDs are processed independently; a failing ID does not stop the rest",
		InputSchema: deleteMemoriesSchema(),
	}, s.deleteMemories)
}

func deleteMemoriesSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ids": {
				Type:        "array",
				Description: "IDs of the memories to delete",
				Items:       &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"ids"},
	}
}

// Run serves the tools over the given transport. The context must already
// carry the caller's identity when the transport has no credential channel
// of its own.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return goerr.Wrap(err, "MCP server failed")
	}
	return nil
}

// RunStdio serves the tools over stdio. The caller identity is fixed for
// the whole session; stdio has no per-request credential channel.
func (s *Server) RunStdio(ctx context.Context, userKey string) error {
	if userKey == "" {
		return goerr.Wrap(model.ErrNotAuthenticated, "stdio mode requires a user key")
	}
	ctx = WithIdentity(ctx, model.Identity{UserKey: userKey})
	return s.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the tools over streamable HTTP. Identity is resolved
// per request from the Authorization header via the given verifier.
func (s *Server) HTTPHandler(verifier TokenVerifier) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	return authMiddleware(verifier, handler)
}
