package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/repository"
)

// Add stores a new memory for the caller and returns the text the store
// actually recorded (the store may rephrase or split the input).
func (uc *UseCase) Add(ctx context.Context, identity model.Identity, text string) (string, error) {
	if !identity.Valid() {
		return "", goerr.Wrap(model.ErrNotAuthenticated, "add requires an identity")
	}
	if text == "" {
		return "", goerr.New("memory text is empty")
	}

	raw, err := uc.repo.Add(ctx, repository.AddInput{
		UserKey: identity.UserKey,
		Messages: []model.Message{
			{Role: "user", Content: text},
		},
		Metadata: uc.writeMetadata(time.Now(), time.Time{}, "", ""),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to add memory")
	}

	return NormalizeAddResponse(raw), nil
}

// writeMetadata builds the provenance metadata attached to every write.
// createdAt survives updates; the remaining fields are set per write.
func (uc *UseCase) writeMetadata(createdAt, lastUpdated time.Time, reason string, previousID model.MemoryID) map[string]any {
	meta := map[string]any{
		"app_context": uc.appContext,
		"created_at":  createdAt.Format(time.RFC3339),
	}
	if !lastUpdated.IsZero() {
		meta["last_updated"] = lastUpdated.Format(time.RFC3339)
	}
	if reason != "" {
		meta["update_reason"] = reason
	}
	if previousID != "" {
		meta["previous_id"] = string(previousID)
	}
	return meta
}
