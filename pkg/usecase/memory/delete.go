package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

// DeleteResult is the outcome for one ID of a batch delete.
type DeleteResult struct {
	ID  model.MemoryID
	Err error
}

// Delete removes the given memories one by one. A failing ID never aborts
// the rest of the batch; each outcome is reported individually. IDs are
// processed sequentially to keep per-ID error attribution straightforward.
func (uc *UseCase) Delete(ctx context.Context, identity model.Identity, ids []model.MemoryID) ([]DeleteResult, error) {
	if !identity.Valid() {
		return nil, goerr.Wrap(model.ErrNotAuthenticated, "delete requires an identity")
	}
	if len(ids) == 0 {
		return nil, goerr.New("no memory IDs given")
	}

	results := make([]DeleteResult, 0, len(ids))
	for _, id := range ids {
		err := uc.repo.Delete(ctx, identity.UserKey, id)
		results = append(results, DeleteResult{ID: id, Err: err})
	}
	return results, nil
}
