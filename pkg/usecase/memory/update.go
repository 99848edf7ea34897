package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
)

// UpdateResult describes a completed replace-by-recreate update.
type UpdateResult struct {
	ID          model.MemoryID // new record, may be empty if the store response hid it
	PreviousID  model.MemoryID
	Text        string
	CreatedAt   time.Time // carried over from the original record
	LastUpdated time.Time
}

// Update replaces a memory's content. The store has no in-place edit, so the
// workflow is fetch, delete, then recreate with provenance metadata carried
// over. The sequence is not atomic: when the recreate step fails after a
// successful delete, the original content is gone and the returned error is
// model.ErrDataLoss, never an ordinary failure. No automatic retry or
// rollback is attempted; retrying the sequence blindly could delete a record
// that was already replaced.
func (uc *UseCase) Update(ctx context.Context, identity model.Identity, id model.MemoryID, newText, reason string) (*UpdateResult, error) {
	if !identity.Valid() {
		return nil, goerr.Wrap(model.ErrNotAuthenticated, "update requires an identity")
	}
	if newText == "" {
		return nil, goerr.New("new memory text is empty")
	}

	// Step 1: fetch. Failure here means nothing was mutated.
	raw, err := uc.repo.Get(ctx, identity.UserKey, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch memory for update", goerr.V("id", id))
	}

	createdAt := time.Now()
	if rec, ok := NormalizeRecord(raw); ok && !rec.Metadata.CreatedAt.IsZero() {
		createdAt = rec.Metadata.CreatedAt
	}

	// Step 2: delete. Failure here leaves the original record intact.
	if err := uc.repo.Delete(ctx, identity.UserKey, id); err != nil {
		return nil, goerr.Wrap(model.ErrDeleteFailed, "update aborted, memory unchanged",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}

	// Step 3: recreate. Failure here is data loss: the delete already
	// happened and cannot be rolled back.
	now := time.Now()
	addRaw, err := uc.repo.Add(ctx, repository.AddInput{
		UserKey: identity.UserKey,
		Messages: []model.Message{
			{Role: "user", Content: newText},
		},
		Metadata: uc.writeMetadata(createdAt, now, reason, id),
	})
	if err != nil {
		logging.From(ctx).Error("memory lost during update",
			"id", id, "user", identity.UserKey)
		return nil, goerr.Wrap(model.ErrDataLoss, "recreate failed after delete; previous content is unrecoverable",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}

	return &UpdateResult{
		ID:          extractAddedID(addRaw),
		PreviousID:  id,
		Text:        NormalizeAddResponse(addRaw),
		CreatedAt:   createdAt,
		LastUpdated: now,
	}, nil
}

// extractAddedID pulls the new record's ID out of an add response when the
// shape exposes one. An empty result only degrades the confirmation message.
func extractAddedID(raw any) model.MemoryID {
	if obj, ok := raw.(map[string]any); ok {
		if results, ok := obj["results"].([]any); ok {
			raw = results
		}
	}
	items, ok := raw.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			if id, ok := obj["id"].(string); ok && id != "" {
				return model.MemoryID(id)
			}
		}
	}
	return ""
}
