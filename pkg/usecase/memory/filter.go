package memory

import (
	"sort"

	"github.com/m-mizutani/kioku/pkg/model"
)

// FilterOptions controls admissibility and ordering of search results.
type FilterOptions struct {
	AppContext string
	MinScore   float64
	MaxCount   int
}

// FilterAndRank keeps results whose appContext tag matches and whose score is
// present and at least MinScore, sorts them by descending score (store order
// preserved among ties) and truncates to MaxCount. The appContext check is
// the guard against records written by other integrations of the same
// account leaking into results.
func FilterAndRank(records []*model.Memory, opts FilterOptions) []*model.Memory {
	admitted := make([]*model.Memory, 0, len(records))
	for _, rec := range records {
		if rec.Metadata.AppContext != opts.AppContext {
			continue
		}
		if !rec.HasScore || rec.Score < opts.MinScore {
			continue
		}
		admitted = append(admitted, rec)
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].Score > admitted[j].Score
	})

	if opts.MaxCount > 0 && len(admitted) > opts.MaxCount {
		admitted = admitted[:opts.MaxCount]
	}
	return admitted
}
