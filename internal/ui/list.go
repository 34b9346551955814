package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/mysubs/internal/models"
)

var (
	_ list.Item = subscriptionItem{}
	_ list.Item = loadMoreItem{}
)

// subscriptionItem wraps [models.SubscriptionItem] to implement [list.Item].
type subscriptionItem struct {
	item models.SubscriptionItem
}

func (i subscriptionItem) FilterValue() string { return i.item.Title }
func (i subscriptionItem) Title() string       { return i.item.Title }
func (i subscriptionItem) Description() string {
	desc := strings.TrimSpace(i.item.Description)
	if n := strings.IndexByte(desc, '\n'); n >= 0 {
		desc = desc[:n]
	}
	if desc == "" {
		return i.item.TargetID()
	}
	return desc
}

// loadMoreItem is the trailing row shown while another page is available.
type loadMoreItem struct {
	loaded int
	total  int
}

func (i loadMoreItem) FilterValue() string { return "" }
func (i loadMoreItem) Title() string       { return "Load more…" }
func (i loadMoreItem) Description() string {
	if i.total > 0 {
		return fmt.Sprintf("%d of %d loaded", i.loaded, i.total)
	}
	return fmt.Sprintf("%d loaded", i.loaded)
}

// listItems converts page into list rows, appending a [loadMoreItem] when the page has a cursor.
func listItems(page *models.SubscriptionPage) []list.Item {
	if page == nil {
		return nil
	}
	items := make([]list.Item, 0, len(page.Items)+1)
	for _, it := range page.Items {
		items = append(items, subscriptionItem{item: it})
	}
	if page.HasMore() {
		items = append(items, loadMoreItem{loaded: len(page.Items), total: page.TotalResults})
	}
	return items
}
