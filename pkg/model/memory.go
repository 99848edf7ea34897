package model

import (
	"strings"
	"time"
)

type MemoryID string

// DefaultAppContext tags every memory written by this service so that reads
// can distinguish them from records stored by other integrations sharing the
// same account on the remote store.
const DefaultAppContext = "kioku"

// Memory represents a single memory record held by the remote store. The
// facade only keeps request-scoped copies; the store owns the data.
type Memory struct {
	ID         MemoryID
	Text       string
	Score      float64
	HasScore   bool
	Categories []string
	Metadata   Metadata
}

// Metadata carries provenance fields attached to every write.
type Metadata struct {
	AppContext   string
	CreatedAt    time.Time
	LastUpdated  time.Time
	UpdateReason string
	PreviousID   MemoryID
}

// Message is a conversational message sent to the remote store's add API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Identity is the authenticated caller, resolved once per request. Every
// store operation must be scoped by exactly one UserKey.
type Identity struct {
	UserKey string
}

// Valid reports whether the identity can scope a store call.
func (x Identity) Valid() bool {
	return x.UserKey != ""
}

// CategoryCount is one entry of a frequency-ranked category index.
type CategoryCount struct {
	Category string
	Count    int
}

// NormalizeCategory folds a category label so that variants like
// "Preferences" and " preferences" count as one category.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
