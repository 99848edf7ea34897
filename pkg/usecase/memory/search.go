package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// Search performs broad relevance search over the caller's memories. The
// threshold is tolerant: recall matters more than precision here.
func (uc *UseCase) Search(ctx context.Context, identity model.Identity, query string) ([]*model.Memory, error) {
	return uc.search(ctx, identity, query, uc.policy.Search)
}

// RelevantContext retrieves memories an agent should already know before
// answering the given query. Precision-first: a higher threshold keeps noise
// out of the consuming agent's prompt.
func (uc *UseCase) RelevantContext(ctx context.Context, identity model.Identity, query string) ([]*model.Memory, error) {
	return uc.search(ctx, identity, query, uc.policy.Context)
}

// SearchByCategory returns the caller's memories whose category set contains
// the given category. Topical match outweighs relevance, so the lowest
// threshold applies.
func (uc *UseCase) SearchByCategory(ctx context.Context, identity model.Identity, category string) ([]*model.Memory, error) {
	if !identity.Valid() {
		return nil, goerr.Wrap(model.ErrNotAuthenticated, "search requires an identity")
	}
	want := model.NormalizeCategory(category)
	if want == "" {
		return nil, goerr.New("category is empty")
	}

	records, err := uc.search(ctx, identity, category, uc.policy.Category)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Memory, 0, len(records))
	for _, rec := range records {
		for _, cat := range rec.Categories {
			if model.NormalizeCategory(cat) == want {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched, nil
}

func (uc *UseCase) search(ctx context.Context, identity model.Identity, query string, policy ScorePolicy) ([]*model.Memory, error) {
	if !identity.Valid() {
		return nil, goerr.Wrap(model.ErrNotAuthenticated, "search requires an identity")
	}
	if query == "" {
		return nil, goerr.New("query is empty")
	}

	// Fetch beyond MaxCount: the appContext filter may drop results.
	fetchLimit := policy.MaxCount * 2

	raws, err := uc.repo.Search(ctx, repository.SearchInput{
		UserKey: identity.UserKey,
		Query:   query,
		Limit:   fetchLimit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories", goerr.V("query", query))
	}

	records := NormalizeRecords(raws)
	return FilterAndRank(records, FilterOptions{
		AppContext: uc.appContext,
		MinScore:   policy.MinScore,
		MaxCount:   policy.MaxCount,
	}), nil
}
