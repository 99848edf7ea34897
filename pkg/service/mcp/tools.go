package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const notAuthenticatedText = "Error: not authenticated. Connect with a valid token before using memory tools."

type addMemoryParams struct {
	Text string `json:"text" jsonschema:"The information to remember about the user"`
}

type searchMemoriesParams struct {
	Query string `json:"query" jsonschema:"Free-text search query"`
}

type searchByCategoryParams struct {
	Category string `json:"category" jsonschema:"Category name, e.g. preferences or projects"`
}

type getMemoryCategoriesParams struct{}

type getRelevantContextParams struct {
	Query string `json:"query" jsonschema:"The current conversation topic or question"`
}

type updateMemoryParams struct {
	ID     string `json:"id" jsonschema:"ID of the memory to update"`
	Text   string `json:"text" jsonschema:"The new memory content"`
	Reason string `json:"reason,omitempty" jsonschema:"Optional reason for the update"`
}

type deleteMemoriesParams struct {
	IDs []string `json:"ids"`
}

func (s *Server) addMemory(ctx context.Context, req *mcp.CallToolRequest, params *addMemoryParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	stored, err := s.uc.Add(ctx, identity, params.Text)
	if err != nil {
		logging.From(ctx).Warn("add_memory failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	return textResult("Memory stored: " + stored), nil, nil
}

func (s *Server) searchMemories(ctx context.Context, req *mcp.CallToolRequest, params *searchMemoriesParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	records, err := s.uc.Search(ctx, identity, params.Query)
	if err != nil {
		logging.From(ctx).Warn("search_memories failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	return textResult(formatMemories(records, time.Now())), nil, nil
}

func (s *Server) searchByCategory(ctx context.Context, req *mcp.CallToolRequest, params *searchByCategoryParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	records, err := s.uc.SearchByCategory(ctx, identity, params.Category)
	if err != nil {
		logging.From(ctx).Warn("search_by_category failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	if len(records) == 0 {
		return textResult(fmt.Sprintf("No memories found in category %q.", params.Category)), nil, nil
	}
	return textResult(formatMemories(records, time.Now())), nil, nil
}

func (s *Server) getMemoryCategories(ctx context.Context, req *mcp.CallToolRequest, params *getMemoryCategoriesParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	index, err := s.uc.Categories(ctx, identity)
	if err != nil {
		logging.From(ctx).Warn("get_memory_categories failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	return textResult(formatCategories(index)), nil, nil
}

func (s *Server) getRelevantContext(ctx context.Context, req *mcp.CallToolRequest, params *getRelevantContextParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	records, err := s.uc.RelevantContext(ctx, identity, params.Query)
	if err != nil {
		logging.From(ctx).Warn("get_relevant_context failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	return textResult(formatMemories(records, time.Now())), nil, nil
}

func (s *Server) updateMemory(ctx context.Context, req *mcp.CallToolRequest, params *updateMemoryParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	result, err := s.uc.Update(ctx, identity, model.MemoryID(params.ID), params.Text, params.Reason)
	if err != nil {
		logging.From(ctx).Warn("update_memory failed", "error", err, "id", params.ID)
		return textResult(errorText(err)), nil, nil
	}
	return textResult(formatUpdate(result)), nil, nil
}

func (s *Server) deleteMemories(ctx context.Context, req *mcp.CallToolRequest, params *deleteMemoriesParams) (*mcp.CallToolResult, any, error) {
	identity := IdentityFrom(ctx)
	if !identity.Valid() {
		return textResult(notAuthenticatedText), nil, nil
	}

	ids := make([]model.MemoryID, 0, len(params.IDs))
	for _, id := range params.IDs {
		ids = append(ids, model.MemoryID(id))
	}

	results, err := s.uc.Delete(ctx, identity, ids)
	if err != nil {
		logging.From(ctx).Warn("delete_memories failed", "error", err)
		return textResult(errorText(err)), nil, nil
	}
	return textResult(formatDeleteResults(results)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorText maps an error to the single text payload the transport allows.
// The data-loss case of the update workflow gets its own wording so that
// "nothing happened" and "content is gone" are never confused.
func errorText(err error) string {
	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		return notAuthenticatedText
	case errors.Is(err, model.ErrDataLoss):
		return "Error: the memory was deleted but could not be recreated. Its previous content is lost. " +
			"Re-add the information with add_memory if you still have it."
	case errors.Is(err, model.ErrDeleteFailed):
		return "Error: the update was aborted before any change; the memory is unchanged. Try again later."
	case errors.Is(err, model.ErrMemoryNotFound):
		return "Error: no memory exists with that ID."
	case errors.Is(err, model.ErrStoreTimeout):
		return "Error: the memory store did not respond in time. Try again later."
	case errors.Is(err, model.ErrStoreUnavailable):
		return "Error: the memory store is currently unavailable. Try again later."
	default:
		return "Error: " + err.Error()
	}
}
