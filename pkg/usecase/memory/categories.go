package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// Aggregate builds a frequency-ranked category index from the given records.
// Category labels are trimmed and case-folded before counting, so
// "Preferences" and "preferences" merge. Ordering: count descending, ties by
// first appearance.
func Aggregate(records []*model.Memory) []model.CategoryCount {
	counts := make(map[string]int)
	var seen []string

	for _, rec := range records {
		for _, cat := range rec.Categories {
			key := model.NormalizeCategory(cat)
			if key == "" {
				continue
			}
			if _, ok := counts[key]; !ok {
				seen = append(seen, key)
			}
			counts[key]++
		}
	}

	index := make([]model.CategoryCount, 0, len(seen))
	for _, cat := range seen {
		index = append(index, model.CategoryCount{Category: cat, Count: counts[cat]})
	}
	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Count > index[j].Count
	})
	return index
}

// Categories returns the category index over a bounded sample of the user's
// memories. It is an approximation over recent records, not an exhaustive
// count; callers must present it as such.
func (uc *UseCase) Categories(ctx context.Context, identity model.Identity) ([]model.CategoryCount, error) {
	if !identity.Valid() {
		return nil, goerr.Wrap(model.ErrNotAuthenticated, "categories requires an identity")
	}

	raws, err := uc.repo.Search(ctx, repository.SearchInput{
		UserKey: identity.UserKey,
		Limit:   uc.policy.CategorySampleSize,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch memories for category index")
	}

	records := NormalizeRecords(raws)

	// The sample may contain records from other integrations; only this
	// facade's records feed the index.
	owned := make([]*model.Memory, 0, len(records))
	for _, rec := range records {
		if rec.Metadata.AppContext == uc.appContext {
			owned = append(owned, rec)
		}
	}
	return Aggregate(owned), nil
}
