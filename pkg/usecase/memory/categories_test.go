package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
)

func withCategories(categories ...string) *model.Memory {
	return &model.Memory{
		ID:         "m",
		Text:       "some memory",
		Categories: categories,
	}
}

func TestAggregate(t *testing.T) {
	t.Run("case-insensitive merge", func(t *testing.T) {
		records := []*model.Memory{
			withCategories("Preferences", "projects"),
			withCategories("preferences"),
		}

		index := memory.Aggregate(records)
		gt.Equal(t, index, []model.CategoryCount{
			{Category: "preferences", Count: 2},
			{Category: "projects", Count: 1},
		})
	})

	t.Run("whitespace trimmed before counting", func(t *testing.T) {
		records := []*model.Memory{
			withCategories(" work "),
			withCategories("work"),
		}

		index := memory.Aggregate(records)
		gt.Equal(t, index, []model.CategoryCount{{Category: "work", Count: 2}})
	})

	t.Run("ties ordered by first appearance", func(t *testing.T) {
		records := []*model.Memory{
			withCategories("travel"),
			withCategories("cooking"),
		}

		index := memory.Aggregate(records)
		gt.Equal(t, index[0].Category, "travel")
		gt.Equal(t, index[1].Category, "cooking")
	})

	t.Run("empty labels dropped", func(t *testing.T) {
		records := []*model.Memory{withCategories("", "  ", "valid")}
		index := memory.Aggregate(records)
		gt.Equal(t, len(index), 1)
		gt.Equal(t, index[0].Category, "valid")
	})

	t.Run("no records", func(t *testing.T) {
		gt.Equal(t, len(memory.Aggregate(nil)), 0)
	})
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	identity := model.Identity{UserKey: "u1"}

	t.Run("samples user memories and excludes other tenants", func(t *testing.T) {
		var gotInput repository.SearchInput
		repo := &mockRepo{
			searchFunc: func(ctx context.Context, input repository.SearchInput) ([]any, error) {
				gotInput = input
				return []any{
					rawRecord("a", "likes tea", 0, "kioku", "Preferences"),
					rawRecord("b", "project deadline", 0, "kioku", "projects", "work"),
					rawRecord("c", "foreign record", 0, "other-app", "Preferences"),
					rawRecord("d", "more prefs", 0, "kioku", "preferences"),
				}, nil
			},
		}

		uc := memory.New(repo)
		index, err := uc.Categories(ctx, identity)
		gt.NoError(t, err)

		// The sample request is scoped to the user with a bounded limit
		gt.Equal(t, gotInput.UserKey, "u1")
		gt.Equal(t, gotInput.Query, "")
		gt.Equal(t, gotInput.Limit, memory.DefaultPolicy().CategorySampleSize)

		// "c" belongs to another integration and must not count
		gt.Equal(t, index, []model.CategoryCount{
			{Category: "preferences", Count: 2},
			{Category: "projects", Count: 1},
			{Category: "work", Count: 1},
		})
	})

	t.Run("requires identity", func(t *testing.T) {
		uc := memory.New(&mockRepo{})
		_, err := uc.Categories(ctx, model.Identity{})
		gt.Error(t, err)
		gt.True(t, errorsIs(err, model.ErrNotAuthenticated))
	})
}
