package memory_test

import (
	"context"
	"errors"

	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// mockRepo is a mock implementation of repository.Repository for testing
type mockRepo struct {
	addFunc    func(ctx context.Context, input repository.AddInput) (any, error)
	searchFunc func(ctx context.Context, input repository.SearchInput) ([]any, error)
	getFunc    func(ctx context.Context, userKey string, id model.MemoryID) (any, error)
	deleteFunc func(ctx context.Context, userKey string, id model.MemoryID) error
}

func (m *mockRepo) Add(ctx context.Context, input repository.AddInput) (any, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepo) Search(ctx context.Context, input repository.SearchInput) ([]any, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepo) Get(ctx context.Context, userKey string, id model.MemoryID) (any, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userKey, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepo) Delete(ctx context.Context, userKey string, id model.MemoryID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userKey, id)
	}
	return errors.New("not implemented")
}

func errorsIs(err, target error) bool {
	return errors.Is(err, target)
}

// rawRecord builds a store-shaped search result
func rawRecord(id, text string, score float64, appContext string, categories ...string) map[string]any {
	cats := make([]any, len(categories))
	for i, c := range categories {
		cats[i] = c
	}
	rec := map[string]any{
		"id":         id,
		"memory":     text,
		"categories": cats,
		"metadata": map[string]any{
			"app_context": appContext,
		},
	}
	if score > 0 {
		rec["score"] = score
	}
	return rec
}
