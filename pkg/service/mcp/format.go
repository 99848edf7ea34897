package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/usecase/memory"
)

// formatMemories renders search results as a numbered list. IDs, scores,
// categories and timestamps stay visible so the caller can act on them.
func formatMemories(records []*model.Memory, now time.Time) string {
	if len(records) == 0 {
		return "No relevant memories found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories:\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec.Text)
		fmt.Fprintf(&b, "   ID: %s\n", rec.ID)
		if rec.HasScore {
			fmt.Fprintf(&b, "   Relevance: %.0f%%\n", rec.Score*100)
		}
		if len(rec.Categories) > 0 {
			fmt.Fprintf(&b, "   Categories: %s\n", strings.Join(rec.Categories, ", "))
		}
		if !rec.Metadata.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "   Created: %s\n", relativeTime(rec.Metadata.CreatedAt, now))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCategories(index []model.CategoryCount) string {
	if len(index) == 0 {
		return "No categorized memories found yet."
	}

	var b strings.Builder
	b.WriteString("Memory categories (by frequency, over a sample of recent memories):\n\n")
	for i, entry := range index {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, entry.Category, entry.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUpdate(result *memory.UpdateResult) string {
	var b strings.Builder
	b.WriteString("Memory updated.\n")
	fmt.Fprintf(&b, "New content: %s\n", result.Text)
	if result.ID != "" {
		fmt.Fprintf(&b, "New ID: %s\n", result.ID)
	}
	fmt.Fprintf(&b, "Replaces: %s\n", result.PreviousID)
	fmt.Fprintf(&b, "Originally created: %s", result.CreatedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func formatDeleteResults(results []memory.DeleteResult) string {
	var b strings.Builder
	succeeded := 0
	for _, res := range results {
		if res.Err == nil {
			succeeded++
		}
	}
	fmt.Fprintf(&b, "Deleted %d of %d memories:\n", succeeded, len(results))
	for _, res := range results {
		if res.Err == nil {
			fmt.Fprintf(&b, "- %s: deleted\n", res.ID)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", res.ID, errorText(res.Err))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// relativeTime annotates timestamps the way a human would read them.
func relativeTime(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
