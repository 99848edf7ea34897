package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotAuthenticated means no caller identity could be resolved. Tools
	// must return a fixed message without touching the store.
	ErrNotAuthenticated = goerr.New("not authenticated")

	// ErrMemoryNotFound means a referenced memory ID does not exist.
	ErrMemoryNotFound = goerr.New("memory not found")

	// ErrStoreUnavailable means the remote store could not be reached or
	// returned a failure response.
	ErrStoreUnavailable = goerr.New("memory store unavailable")

	// ErrStoreTimeout means a store call exceeded its deadline. Kept separate
	// from ErrStoreUnavailable so operators can tell slow from down.
	ErrStoreTimeout = goerr.New("memory store timeout")

	// ErrDeleteFailed means the delete step of an update failed. The original
	// record is still intact.
	ErrDeleteFailed = goerr.New("failed to delete existing memory")

	// ErrDataLoss means the update engine deleted the original record but
	// failed to recreate it. The prior content is gone; this must never be
	// reported as an ordinary failure.
	ErrDataLoss = goerr.New("memory content lost during update")
)
