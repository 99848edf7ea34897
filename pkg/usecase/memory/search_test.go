package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	identity := model.Identity{UserKey: "u1"}

	t.Run("own records above threshold appear, foreign ones never do", func(t *testing.T) {
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				gt.Equal(t, input.UserKey, "u1")
				gt.Equal(t, input.Query, "theme preference")
				return []any{
					rawRecord("own", "User prefers dark mode", 0.72, "kioku"),
					rawRecord("foreign", "User prefers dark mode", 0.99, "other-app"),
				}, nil
			},
		}

		policy := memory.DefaultPolicy()
		policy.Search.MinScore = 0.5
		uc := memory.New(repo, memory.WithPolicy(policy))

		records, err := uc.Search(ctx, identity, "theme preference")
		gt.NoError(t, err)
		gt.Equal(t, len(records), 1)
		gt.Equal(t, records[0].ID, model.MemoryID("own"))
		gt.Equal(t, records[0].Score, 0.72)
	})

	t.Run("no admissible results is success, not failure", func(t *testing.T) {
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				return nil, nil
			},
		}

		uc := memory.New(repo)
		records, err := uc.Search(ctx, identity, "anything")
		gt.NoError(t, err)
		gt.Equal(t, len(records), 0)
	})

	t.Run("store failure is an error", func(t *testing.T) {
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				return nil, model.ErrStoreUnavailable
			},
		}

		uc := memory.New(repo)
		_, err := uc.Search(ctx, identity, "anything")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrStoreUnavailable))
	})

	t.Run("requires identity", func(t *testing.T) {
		uc := memory.New(&mockRepo{})
		_, err := uc.Search(ctx, model.Identity{}, "anything")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrNotAuthenticated))
	})

	t.Run("rejects empty query", func(t *testing.T) {
		uc := memory.New(&mockRepo{})
		_, err := uc.Search(ctx, identity, "")
		gt.Error(t, err)
	})
}

func TestRelevantContext(t *testing.T) {
	ctx := context.Background()
	identity := model.Identity{UserKey: "u1"}

	t.Run("uses the precision threshold", func(t *testing.T) {
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				return []any{
					rawRecord("strong", "Deploys on Fridays are banned", 0.85, "kioku"),
					rawRecord("weak", "Mentioned Fridays once", 0.55, "kioku"),
				}, nil
			},
		}

		uc := memory.New(repo) // default context threshold is 0.7
		records, err := uc.RelevantContext(ctx, identity, "deployment rules")
		gt.NoError(t, err)
		gt.Equal(t, len(records), 1)
		gt.Equal(t, records[0].ID, model.MemoryID("strong"))
	})
}

func TestSearchByCategory(t *testing.T) {
	ctx := context.Background()
	identity := model.Identity{UserKey: "u1"}

	t.Run("matches category case-insensitively", func(t *testing.T) {
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				return []any{
					rawRecord("a", "likes green tea", 0.4, "kioku", "Preferences"),
					rawRecord("b", "project kickoff", 0.5, "kioku", "projects"),
				}, nil
			},
		}

		uc := memory.New(repo)
		records, err := uc.SearchByCategory(ctx, identity, "preferences")
		gt.NoError(t, err)
		gt.Equal(t, len(records), 1)
		gt.Equal(t, records[0].ID, model.MemoryID("a"))
	})

	t.Run("rejects empty category", func(t *testing.T) {
		uc := memory.New(&mockRepo{})
		_, err := uc.SearchByCategory(ctx, identity, "  ")
		gt.Error(t, err)
	})
}
