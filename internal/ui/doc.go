// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a small multi-view workflow for browsing subscriptions:
//  1. [SubscriptionListView] : Browse subscriptions, paging in more with "load more"
//  2. [DetailView] : Channel details with statistics, fetched by the item's target id
//  3. [AccountView] : Signed-in account name and picture URL
//  4. [ConfirmView] : Confirm signing out
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Loaded pages are merged with [models.SubscriptionPage.Append] so earlier items keep their order.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, m, a, l, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
