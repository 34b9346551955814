package tasks

import (
	"fmt"

	"github.com/desertthunder/mysubs/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	EnrichChannels
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case EnrichChannels:
		return "enrich_channels"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingPageUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching subscriptions page %d...", step),
	}
}

func fetchedPageUpdate(step, total int, page *models.SubscriptionPage, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Page %d: %d subscriptions so far", step, count),
		Data:    page,
	}
}

func enrichStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichChannels,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching details for %d channels...", total),
	}
}

func enrichedUpdate(step, total int, item *models.SubscriptionItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichChannels,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, item.Title),
		Data:    item,
	}
}

func enrichFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichChannels,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func doneUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d subscriptions", count),
	}
}
