package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mysubs/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageFetched MsgKind = iota
	MsgChannelFetched
	MsgAccountFetched
	MsgLoggedOut
)

type pageResult struct {
	page   *models.SubscriptionPage
	cursor string
	err    error
}

type channelResult struct {
	channel *models.SubscriptionItem
	err     error
}

type accountResult struct {
	account *models.Account
	err     error
}

// pageFetchedMsg is the constructor for [MsgPageFetched]. cursor is the cursor the page was requested with.
func pageFetchedMsg(page *models.SubscriptionPage, cursor string, err error) Msg {
	return Msg{kind: MsgPageFetched, data: pageResult{page, cursor, err}}
}

// channelFetchedMsg is the constructor for [MsgChannelFetched]
func channelFetchedMsg(channel *models.SubscriptionItem, err error) Msg {
	return Msg{kind: MsgChannelFetched, data: channelResult{channel, err}}
}

// accountFetchedMsg is the constructor for [MsgAccountFetched]
func accountFetchedMsg(account *models.Account, err error) Msg {
	return Msg{kind: MsgAccountFetched, data: accountResult{account, err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg() Msg {
	return Msg{kind: MsgLoggedOut}
}
