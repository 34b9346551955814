// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/models"
)

// FailingStore wraps a [credentials.Store] and returns the configured errors instead of delegating.
type FailingStore struct {
	credentials.Store
	GetErr   error
	SetErr   error
	ClearErr error
}

// NewFailingStore wraps an empty [credentials.MemoryStore].
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: credentials.NewMemoryStore()}
}

func (f *FailingStore) Get(ctx context.Context, tag credentials.Tag) (string, error) {
	if f.GetErr != nil {
		return "", f.GetErr
	}
	return f.Store.Get(ctx, tag)
}

func (f *FailingStore) Set(ctx context.Context, tag credentials.Tag, value string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Store.Set(ctx, tag, value)
}

func (f *FailingStore) Clear(ctx context.Context, tag credentials.Tag) error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	return f.Store.Clear(ctx, tag)
}

// MockTokenProvider is a test double for the token manager as seen by the YouTube client.
//
// Refresh installs Next as the current credential, or fails with Err.
type MockTokenProvider struct {
	mu        sync.Mutex
	current   *models.Credential
	Next      *models.Credential
	Err       error
	refreshes int
}

func NewMockTokenProvider(current *models.Credential) *MockTokenProvider {
	return &MockTokenProvider{current: current}
}

func (m *MockTokenProvider) Current() *models.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.Live() {
		return nil
	}
	c := *m.current
	return &c
}

func (m *MockTokenProvider) Refresh(ctx context.Context) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshes++
	if m.Err != nil {
		return nil, m.Err
	}
	m.current = m.Next
	return m.Next, nil
}

// Refreshes is the number of Refresh calls so far.
func (m *MockTokenProvider) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

// MockSubscriptionsClient is an in-memory subscriptions client keyed by page cursor and channel id.
type MockSubscriptionsClient struct {
	mu          sync.Mutex
	Pages       map[string]*models.SubscriptionPage // "" is the first page
	Channels    map[string]*models.SubscriptionItem
	AccountInfo *models.Account
	ListErr     error
	ChannelErrs map[string]error
	AccountErr  error
	cursors     []string
	channelIDs  []string
}

func NewMockSubscriptionsClient() *MockSubscriptionsClient {
	return &MockSubscriptionsClient{
		Pages:       map[string]*models.SubscriptionPage{},
		Channels:    map[string]*models.SubscriptionItem{},
		ChannelErrs: map[string]error{},
	}
}

func (m *MockSubscriptionsClient) ListSubscriptions(ctx context.Context, pageCursor string) (*models.SubscriptionPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cursors = append(m.cursors, pageCursor)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	page, ok := m.Pages[pageCursor]
	if !ok {
		return &models.SubscriptionPage{}, nil
	}
	cp := *page
	cp.Items = append([]models.SubscriptionItem(nil), page.Items...)
	return &cp, nil
}

func (m *MockSubscriptionsClient) Account(ctx context.Context) (*models.Account, error) {
	if m.AccountErr != nil {
		return nil, m.AccountErr
	}
	if m.AccountInfo == nil {
		return nil, errors.New("no account configured")
	}
	a := *m.AccountInfo
	return &a, nil
}

func (m *MockSubscriptionsClient) Channel(ctx context.Context, channelID string) (*models.SubscriptionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.channelIDs = append(m.channelIDs, channelID)
	if err := m.ChannelErrs[channelID]; err != nil {
		return nil, err
	}
	ch, ok := m.Channels[channelID]
	if !ok {
		return nil, errors.New("channel not configured: " + channelID)
	}
	c := *ch
	return &c, nil
}

// Cursors returns the page cursors requested so far, in order.
func (m *MockSubscriptionsClient) Cursors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cursors...)
}

// ChannelIDs returns the channel ids requested so far, in completion order.
func (m *MockSubscriptionsClient) ChannelIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.channelIDs...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
