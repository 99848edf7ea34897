package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
)

// Memory is an in-process Repository for development and testing. It mimics
// the remote service's response shapes, including its loose typing, so the
// rest of the system exercises the same normalization path.
type Memory struct {
	mu      sync.RWMutex
	records map[model.MemoryID]*memoryRecord
	order   []model.MemoryID
}

type memoryRecord struct {
	userKey    string
	text       string
	categories []string
	metadata   map[string]any
	createdAt  time.Time
}

// NewMemory creates an empty in-process repository
func NewMemory() *Memory {
	return &Memory{
		records: make(map[model.MemoryID]*memoryRecord),
	}
}

func (r *Memory) Add(ctx context.Context, input AddInput) (any, error) {
	if input.UserKey == "" {
		return nil, goerr.New("user key is required")
	}

	var parts []string
	for _, msg := range input.Messages {
		if msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	text := strings.Join(parts, "\n")

	meta := make(map[string]any, len(input.Metadata))
	for k, v := range input.Metadata {
		meta[k] = v
	}

	id := model.MemoryID(uuid.New().String())
	r.mu.Lock()
	r.records[id] = &memoryRecord{
		userKey:    input.UserKey,
		text:       text,
		categories: inferCategories(text),
		metadata:   meta,
		createdAt:  time.Now(),
	}
	r.order = append(r.order, id)
	r.mu.Unlock()

	// Same shape as the hosted service's v1.1 add response.
	return map[string]any{
		"results": []any{
			map[string]any{
				"id":    string(id),
				"data":  map[string]any{"memory": text},
				"event": "ADD",
			},
		},
	}, nil
}

func (r *Memory) Search(ctx context.Context, input SearchInput) ([]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	broad := strings.TrimSpace(input.Query) == ""

	var results []any
	for _, id := range r.order {
		rec, ok := r.records[id]
		if !ok || rec.userKey != input.UserKey {
			continue
		}
		var score float64
		if !broad {
			score = overlapScore(input.Query, rec.text)
			if score <= 0 {
				continue
			}
		}
		results = append(results, rec.raw(id, score))
		if input.Limit > 0 && len(results) >= input.Limit {
			break
		}
	}
	return results, nil
}

func (r *Memory) Get(ctx context.Context, userKey string, id model.MemoryID) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok || rec.userKey != userKey {
		return nil, goerr.Wrap(model.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}
	return rec.raw(id, 0), nil
}

func (r *Memory) Delete(ctx context.Context, userKey string, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.userKey != userKey {
		return goerr.Wrap(model.ErrMemoryNotFound, "no such memory", goerr.V("id", id))
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored records across all users
func (r *Memory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (rec *memoryRecord) raw(id model.MemoryID, score float64) map[string]any {
	cats := make([]any, len(rec.categories))
	for i, c := range rec.categories {
		cats[i] = c
	}

	out := map[string]any{
		"id":         string(id),
		"memory":     rec.text,
		"categories": cats,
		"metadata":   rec.metadata,
		"created_at": rec.createdAt.Format(time.RFC3339),
	}
	if score > 0 {
		out["score"] = score
	}
	return out
}

// overlapScore is a crude stand-in for the hosted service's relevance score:
// the fraction of query terms appearing in the memory text.
func overlapScore(query, text string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lowered := strings.ToLower(text)
	hit := 0
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			hit++
		}
	}
	return float64(hit) / float64(len(terms))
}

var categoryKeywords = map[string][]string{
	"preferences": {"prefer", "like", "favorite", "always use"},
	"projects":    {"project", "repo", "deadline"},
	"work":        {"work", "meeting", "colleague"},
	"personal":    {"family", "birthday", "home"},
	"technical":   {"golang", "python", "database", "server"},
}

func inferCategories(text string) []string {
	lowered := strings.ToLower(text)
	var cats []string
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}
