package memory_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
)

func TestNormalizeAddResponse(t *testing.T) {
	testCases := []struct {
		name     string
		raw      any
		expected string
	}{
		{
			name:     "bare string",
			raw:      "User prefers dark mode",
			expected: "User prefers dark mode",
		},
		{
			name: "array with nested data.memory",
			raw: []any{
				map[string]any{
					"id":    "mem-1",
					"data":  map[string]any{"memory": "Likes green tea"},
					"event": "ADD",
				},
			},
			expected: "Likes green tea",
		},
		{
			name:     "array of strings",
			raw:      []any{"Works remotely on Fridays"},
			expected: "Works remotely on Fridays",
		},
		{
			name:     "array with direct text field",
			raw:      []any{map[string]any{"text": "Uses vim keybindings"}},
			expected: "Uses vim keybindings",
		},
		{
			name:     "array with direct memory field",
			raw:      []any{map[string]any{"memory": "Allergic to peanuts"}},
			expected: "Allergic to peanuts",
		},
		{
			name: "object with memories array",
			raw: map[string]any{
				"memories": []any{map[string]any{"text": "Lives in Tokyo"}},
			},
			expected: "Lives in Tokyo",
		},
		{
			name:     "object with message",
			raw:      map[string]any{"message": "Memory added successfully"},
			expected: "Memory added successfully",
		},
		{
			name:     "object with text",
			raw:      map[string]any{"text": "Prefers tabs over spaces"},
			expected: "Prefers tabs over spaces",
		},
		{
			name: "v1.1 results wrapper",
			raw: map[string]any{
				"results": []any{
					map[string]any{
						"id":   "mem-2",
						"data": map[string]any{"memory": "Team stand-up at 10am"},
					},
				},
			},
			expected: "Team stand-up at 10am",
		},
		{
			name:     "nil response",
			raw:      nil,
			expected: memory.FallbackAddNotice,
		},
		{
			name:     "numeric response",
			raw:      float64(42),
			expected: memory.FallbackAddNotice,
		},
		{
			name:     "unrecognized object",
			raw:      map[string]any{"status": "ok"},
			expected: memory.FallbackAddNotice,
		},
		{
			name:     "empty array",
			raw:      []any{},
			expected: memory.FallbackAddNotice,
		},
		{
			name:     "array of unusable elements",
			raw:      []any{map[string]any{"event": "NOOP"}, float64(1)},
			expected: memory.FallbackAddNotice,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, memory.NormalizeAddResponse(tc.raw), tc.expected)
		})
	}
}

func TestNormalizeRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		raw := map[string]any{
			"id":         "mem-1",
			"memory":     "User prefers dark mode",
			"score":      0.72,
			"categories": []any{"Preferences", "ui"},
			"created_at": "2024-02-01T09:30:00Z",
			"metadata": map[string]any{
				"app_context":   "kioku",
				"created_at":    "2024-01-15T08:00:00Z",
				"last_updated":  "2024-02-01T09:30:00Z",
				"update_reason": "corrected typo",
				"previous_id":   "mem-0",
			},
		}

		rec, ok := memory.NormalizeRecord(raw)
		gt.True(t, ok)
		gt.Equal(t, rec.ID, model.MemoryID("mem-1"))
		gt.Equal(t, rec.Text, "User prefers dark mode")
		gt.True(t, rec.HasScore)
		gt.Equal(t, rec.Score, 0.72)
		gt.Equal(t, rec.Categories, []string{"Preferences", "ui"})
		gt.Equal(t, rec.Metadata.AppContext, "kioku")
		gt.Equal(t, rec.Metadata.UpdateReason, "corrected typo")
		gt.Equal(t, rec.Metadata.PreviousID, model.MemoryID("mem-0"))

		// metadata timestamp wins over the store's top-level one
		gt.Equal(t, rec.Metadata.CreatedAt, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC))
	})

	t.Run("top-level timestamp as fallback", func(t *testing.T) {
		raw := map[string]any{
			"id":         "mem-2",
			"memory":     "Meeting notes",
			"created_at": "2024-02-01T09:30:00Z",
		}

		rec, ok := memory.NormalizeRecord(raw)
		gt.True(t, ok)
		gt.Equal(t, rec.Metadata.CreatedAt, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC))
	})

	t.Run("text field instead of memory", func(t *testing.T) {
		rec, ok := memory.NormalizeRecord(map[string]any{"id": "mem-3", "text": "Uses Linux"})
		gt.True(t, ok)
		gt.Equal(t, rec.Text, "Uses Linux")
	})

	t.Run("bare string", func(t *testing.T) {
		rec, ok := memory.NormalizeRecord("Plays piano")
		gt.True(t, ok)
		gt.Equal(t, rec.Text, "Plays piano")
		gt.Equal(t, rec.ID, model.MemoryID(""))
	})

	t.Run("integer score", func(t *testing.T) {
		rec, ok := memory.NormalizeRecord(map[string]any{"id": "mem-4", "memory": "x", "score": 1})
		gt.True(t, ok)
		gt.True(t, rec.HasScore)
		gt.Equal(t, rec.Score, 1.0)
	})

	t.Run("no score means not admissible later", func(t *testing.T) {
		rec, ok := memory.NormalizeRecord(map[string]any{"id": "mem-5", "memory": "x"})
		gt.True(t, ok)
		gt.Equal(t, rec.HasScore, false)
	})

	t.Run("unusable shapes dropped", func(t *testing.T) {
		_, ok := memory.NormalizeRecord(map[string]any{"event": "NOOP"})
		gt.Equal(t, ok, false)

		_, ok = memory.NormalizeRecord(float64(3))
		gt.Equal(t, ok, false)

		_, ok = memory.NormalizeRecord(nil)
		gt.Equal(t, ok, false)
	})

	t.Run("garbled timestamps ignored", func(t *testing.T) {
		rec, ok := memory.NormalizeRecord(map[string]any{
			"id":         "mem-6",
			"memory":     "x",
			"created_at": "yesterday-ish",
		})
		gt.True(t, ok)
		gt.True(t, rec.Metadata.CreatedAt.IsZero())
	})
}

func TestNormalizeRecords(t *testing.T) {
	raws := []any{
		map[string]any{"id": "a", "memory": "first"},
		map[string]any{"unrelated": true},
		"second",
		nil,
	}

	records := memory.NormalizeRecords(raws)
	gt.Equal(t, len(records), 2)
	gt.Equal(t, records[0].Text, "first")
	gt.Equal(t, records[1].Text, "second")
}
