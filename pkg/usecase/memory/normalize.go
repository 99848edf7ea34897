package memory

import (
	"time"

	"github.com/m-mizutani/kioku/pkg/model"
)

// FallbackAddNotice is returned when an add response matches none of the
// known shapes. Callers get this instead of an empty string or an error.
const FallbackAddNotice = "Memory saved, but the store response could not be summarized."

// NormalizeAddResponse extracts the stored memory text from whatever shape
// the store's add endpoint returned. The shapes are tried in a fixed order;
// malformed input never causes an error, only the fallback notice.
func NormalizeAddResponse(raw any) string {
	// Newer service versions wrap the payload in a "results" object.
	if obj, ok := raw.(map[string]any); ok {
		if results, ok := obj["results"].([]any); ok {
			raw = results
		}
	}

	switch v := raw.(type) {
	case string:
		if v != "" {
			return v
		}

	case []any:
		// Elements with a nested data.memory string
		if text := textFromItems(v, func(item map[string]any) string {
			if data, ok := item["data"].(map[string]any); ok {
				if mem, ok := data["memory"].(string); ok {
					return mem
				}
			}
			return ""
		}); text != "" {
			return text
		}

		// Elements that are bare strings
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}

		// Elements with a direct text or memory field
		if text := textFromItems(v, textOrMemory); text != "" {
			return text
		}

	case map[string]any:
		if memories, ok := v["memories"].([]any); ok {
			if text := textFromItems(memories, textOrMemory); text != "" {
				return text
			}
		}
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
	}

	return FallbackAddNotice
}

func textFromItems(items []any, extract func(map[string]any) string) string {
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text := extract(obj); text != "" {
			return text
		}
	}
	return ""
}

func textOrMemory(obj map[string]any) string {
	if s, ok := obj["text"].(string); ok && s != "" {
		return s
	}
	if s, ok := obj["memory"].(string); ok && s != "" {
		return s
	}
	return ""
}

// NormalizeRecords converts raw search/get results into canonical memory
// records. Entries that carry neither an ID nor any text are dropped.
func NormalizeRecords(raws []any) []*model.Memory {
	records := make([]*model.Memory, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := NormalizeRecord(raw); ok {
			records = append(records, rec)
		}
	}
	return records
}

// NormalizeRecord converts one raw store record into a canonical memory
// record. The second return value is false when the input is unusable.
func NormalizeRecord(raw any) (*model.Memory, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		if s, ok := raw.(string); ok && s != "" {
			return &model.Memory{Text: s}, true
		}
		return nil, false
	}

	rec := &model.Memory{}
	if id, ok := obj["id"].(string); ok {
		rec.ID = model.MemoryID(id)
	}
	rec.Text = textOrMemory(obj)
	if rec.ID == "" && rec.Text == "" {
		return nil, false
	}

	if score, ok := asFloat(obj["score"]); ok {
		rec.Score = score
		rec.HasScore = true
	}

	if cats, ok := obj["categories"].([]any); ok {
		for _, c := range cats {
			if s, ok := c.(string); ok {
				rec.Categories = append(rec.Categories, s)
			}
		}
	}

	meta, _ := obj["metadata"].(map[string]any)
	if tag, ok := meta["app_context"].(string); ok {
		rec.Metadata.AppContext = tag
	}
	if reason, ok := meta["update_reason"].(string); ok {
		rec.Metadata.UpdateReason = reason
	}
	if prev, ok := meta["previous_id"].(string); ok {
		rec.Metadata.PreviousID = model.MemoryID(prev)
	}

	// Timestamps appear both inside metadata (our writes) and at the top
	// level (the store's own bookkeeping). Our writes win.
	rec.Metadata.CreatedAt = firstTime(meta["created_at"], obj["created_at"])
	rec.Metadata.LastUpdated = firstTime(meta["last_updated"], obj["updated_at"])

	return rec, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func firstTime(candidates ...any) time.Time {
	for _, c := range candidates {
		s, ok := c.(string)
		if !ok || s == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
