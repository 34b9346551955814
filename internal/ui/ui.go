package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mysubs/internal/models"
	"github.com/desertthunder/mysubs/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SubscriptionListView ViewState = iota
	DetailView
	AccountView
	ConfirmView
)

// Session signs the user out. [auth.Manager] satisfies it.
type Session interface {
	Logout(ctx context.Context)
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	client    services.SubscriptionsClient
	session   Session
	width     int
	height    int
	list      list.Model
	page      *models.SubscriptionPage
	loading   bool
	detail    *models.SubscriptionItem
	account   *models.Account
	loggedOut bool
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model. session may be nil, which disables signing out.
func NewModel(ctx context.Context, client services.SubscriptionsClient, session Session) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Subscriptions"
	return &Model{
		ctx:     ctx,
		view:    SubscriptionListView,
		client:  client,
		session: session,
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// LoggedOut reports whether the user signed out from the TUI.
func (m *Model) LoggedOut() bool { return m.loggedOut }

// Err returns the last error shown to the user.
func (m *Model) Err() error { return m.err }

// Init initializes the TUI by fetching the first subscriptions page.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.fetchPage("")
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SubscriptionListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case AccountView:
			return m.handleAccountKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == SubscriptionListView {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPageFetched:
		res := msg.data.(pageResult)
		m.loading = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		switch {
		case m.page == nil:
			m.page = res.page
		case res.cursor == m.page.NextPageCursor:
			m.page.Append(res.page)
		default:
			// A response for a cursor already consumed.
			return m, nil
		}
		idx := m.list.Index()
		cmd := m.list.SetItems(listItems(m.page))
		m.list.Select(idx)
		return m, cmd

	case MsgChannelFetched:
		res := msg.data.(channelResult)
		m.loading = false
		m.detail, m.err = res.channel, res.err
		return m, nil

	case MsgAccountFetched:
		res := msg.data.(accountResult)
		m.loading = false
		m.account, m.err = res.account, res.err
		return m, nil

	case MsgLoggedOut:
		m.loggedOut = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SubscriptionListView:
		body = m.renderList()
	case DetailView:
		body = m.renderDetail()
	case AccountView:
		body = m.renderAccount()
	case ConfirmView:
		body = m.renderConfirm()
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), body)
	}
	return body
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		switch selected := m.list.SelectedItem().(type) {
		case subscriptionItem:
			return m, m.openDetail(selected.item)
		case loadMoreItem:
			return m, m.loadMore()
		}
		return m, nil
	case key.Matches(msg, m.keys.loadMore):
		return m, m.loadMore()
	case key.Matches(msg, m.keys.account):
		m.view = AccountView
		m.err = nil
		if m.account != nil {
			return m, nil
		}
		m.loading = true
		return m, m.fetchAccount()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SubscriptionListView
		m.detail = nil
		m.err = nil
	}
	return m, nil
}

func (m *Model) handleAccountKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SubscriptionListView
		m.err = nil
	case key.Matches(msg, m.keys.logout):
		if m.session != nil {
			m.view = ConfirmView
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.logout()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = AccountView
	}
	return m, nil
}

func (m *Model) openDetail(item models.SubscriptionItem) tea.Cmd {
	m.view = DetailView
	m.detail = nil
	m.err = nil
	m.loading = true
	return m.fetchChannel(item.TargetID())
}

func (m *Model) loadMore() tea.Cmd {
	if m.loading || m.page == nil || !m.page.HasMore() {
		return nil
	}
	m.loading = true
	return m.fetchPage(m.page.NextPageCursor)
}

func (m *Model) fetchPage(cursor string) tea.Cmd {
	return func() tea.Msg {
		page, err := m.client.ListSubscriptions(m.ctx, cursor)
		return pageFetchedMsg(page, cursor, err)
	}
}

func (m *Model) fetchChannel(id string) tea.Cmd {
	return func() tea.Msg {
		ch, err := m.client.Channel(m.ctx, id)
		return channelFetchedMsg(ch, err)
	}
}

func (m *Model) fetchAccount() tea.Cmd {
	return func() tea.Msg {
		acct, err := m.client.Account(m.ctx)
		return accountFetchedMsg(acct, err)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout(m.ctx)
		return loggedOutMsg()
	}
}

func (m *Model) renderList() string {
	if m.page == nil {
		if m.loading {
			return styles.help.Render("Loading subscriptions…")
		}
		return styles.warn.Render("No subscriptions loaded")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.account, m.keys.quit}
	if m.page.HasMore() {
		helpKeys = append([]key.Binding{m.keys.loadMore}, helpKeys...)
	}
	status := ""
	if m.loading {
		status = "\n" + styles.help.Render("Loading…")
	}
	return fmt.Sprintf("%s%s\n\n%s", m.list.View(), status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	if m.detail == nil {
		if m.loading {
			return fmt.Sprintf("%s\n\n%s", styles.help.Render("Loading channel…"), helpView)
		}
		return helpView
	}

	ch := m.detail
	var b strings.Builder
	b.WriteString(styles.title.Render(ch.Title))
	b.WriteString("\n")
	if desc := strings.TrimSpace(ch.Description); desc != "" {
		b.WriteString(desc + "\n\n")
	}
	if thumb, ok := models.PickThumbnail(*ch, "high", "medium", "default"); ok {
		b.WriteString(fmt.Sprintf("Thumbnail: %s\n", thumb.URL))
	}
	if s := ch.Statistics; s != nil {
		subs := fmt.Sprintf("%d", s.SubscriberCount)
		if s.HiddenSubscriberCount {
			subs = "hidden"
		}
		b.WriteString(fmt.Sprintf("Subscribers: %s\nVideos: %d\nViews: %d\n", subs, s.VideoCount, s.ViewCount))
	}
	b.WriteString(fmt.Sprintf("Channel: %s\n", ch.TargetID()))
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func (m *Model) renderAccount() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.session != nil {
		helpKeys = append([]key.Binding{m.keys.logout}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.account == nil {
		if m.loading {
			return fmt.Sprintf("%s\n\n%s", styles.help.Render("Loading account…"), helpView)
		}
		return helpView
	}

	title := styles.ok.Render("Signed in")
	info := fmt.Sprintf("Name: %s\nPicture: %s\n", m.account.Name, m.account.PictureURL)
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderConfirm() string {
	name := "this account"
	if m.account != nil && m.account.Name != "" {
		name = m.account.Name
	}
	title := styles.warn.Render(fmt.Sprintf("Sign out of %s?", name))
	info := "\nThe stored refresh token will be removed.\n"
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
