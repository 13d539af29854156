package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-promptforge/internal/config"
	"github.com/alnah/go-promptforge/internal/provider"
	"github.com/alnah/go-promptforge/internal/store"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
	SaveFunc func(key, value string) error

	mu        sync.Mutex
	loadCalls int
	saved     map[string]string
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{User: "tester", Timeout: time.Minute}, nil
}

func (m *mockConfigLoader) Save(key, value string) error {
	m.mu.Lock()
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[key] = value
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(key, value)
	}
	return nil
}

func (m *mockConfigLoader) Saved() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.saved))
	for k, v := range m.saved {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Mock StoreOpener + Store (in-memory)
// ---------------------------------------------------------------------------

type mockStoreOpener struct {
	OpenFunc func(ctx context.Context, cfg config.Config) (Store, error)

	mockStore *mockStore
}

func (m *mockStoreOpener) Open(ctx context.Context, cfg config.Config) (Store, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, cfg)
	}
	if m.mockStore == nil {
		m.mockStore = newMockStore()
	}
	return m.mockStore, nil
}

type mockStore struct {
	mu      sync.Mutex
	keys    map[string]string // user|provider -> key
	prefs   map[string]store.Preferences
	history []store.HistoryEntry
	closed  int
	nextID  int

	// noSealer makes credential reads and writes fail like a store
	// opened without a passphrase.
	noSealer bool
	// credErr overrides every Credential lookup when set.
	credErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		keys:  make(map[string]string),
		prefs: make(map[string]store.Preferences),
	}
}

func keyID(user string, p provider.Name) string { return user + "|" + p.String() }

func (m *mockStore) Credential(_ context.Context, user string, p provider.Name) (provider.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.credErr != nil {
		return provider.Credential{}, m.credErr
	}
	if m.noSealer {
		return provider.Credential{}, store.ErrSealerMissing
	}
	k, ok := m.keys[keyID(user, p)]
	if !ok {
		return provider.Credential{}, fmt.Errorf("%s credential: %w", p, store.ErrNotFound)
	}
	return provider.Credential{Provider: p, Secret: k}, nil
}

func (m *mockStore) SaveCredential(_ context.Context, user string, p provider.Name, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.noSealer {
		return store.ErrSealerMissing
	}
	m.keys[keyID(user, p)] = apiKey
	return nil
}

func (m *mockStore) RemoveCredential(_ context.Context, user string, p provider.Name) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[keyID(user, p)]; !ok {
		return fmt.Errorf("%s credential: %w", p, store.ErrNotFound)
	}
	delete(m.keys, keyID(user, p))
	return nil
}

func (m *mockStore) ListCredentials(_ context.Context, user string) ([]store.CredentialInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.CredentialInfo
	for _, p := range provider.Names() {
		if _, ok := m.keys[keyID(user, p)]; ok {
			out = append(out, store.CredentialInfo{Provider: p, UpdatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local)})
		}
	}
	return out, nil
}

func (m *mockStore) Preferences(_ context.Context, user string) (store.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs[user], nil
}

func (m *mockStore) SavePreferences(_ context.Context, user string, prefs store.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[user] = prefs
	return nil
}

func (m *mockStore) StartHistory(_ context.Context, e store.HistoryEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = fmt.Sprintf("h%d", m.nextID)
	e.Status = store.StatusGenerating
	m.history = append(m.history, e)
	return e.ID, nil
}

func (m *mockStore) FinishHistory(_ context.Context, id, output string, status store.Status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.history {
		if m.history[i].ID == id && m.history[i].Status == store.StatusGenerating {
			m.history[i].Output = output
			m.history[i].Status = status
			m.history[i].Error = errMsg
			return nil
		}
	}
	return fmt.Errorf("history %s: %w", id, store.ErrNotFound)
}

// RecentHistory returns entries newest first (reverse insertion order).
func (m *mockStore) RecentHistory(_ context.Context, user string, limit int) ([]store.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.HistoryEntry
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].User == user {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *mockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockStore) History() []store.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.HistoryEntry(nil), m.history...)
}

func (m *mockStore) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ---------------------------------------------------------------------------
// Mock DispatcherFactory + Dispatcher
// ---------------------------------------------------------------------------

type mockDispatcherFactory struct {
	mockDispatcher *mockDispatcher
}

func (m *mockDispatcherFactory) NewDispatcher(_ config.Config, _ zerolog.Logger) provider.Dispatcher {
	if m.mockDispatcher == nil {
		m.mockDispatcher = &mockDispatcher{}
	}
	return m.mockDispatcher
}

type dispatchCall struct {
	Cred   provider.Credential
	Model  string
	Prompt string
}

type mockDispatcher struct {
	DispatchFunc func(ctx context.Context, cred provider.Credential, model, prompt string) (string, error)

	mu    sync.Mutex
	calls []dispatchCall
}

func (m *mockDispatcher) Dispatch(ctx context.Context, cred provider.Credential, model, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, dispatchCall{Cred: cred, Model: model, Prompt: prompt})
	m.mu.Unlock()

	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, cred, model, prompt)
	}
	return "Generated prompt from " + cred.Provider.String(), nil
}

func (m *mockDispatcher) Calls() []dispatchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dispatchCall(nil), m.calls...)
}

// Compile-time interface verification.
var (
	_ ConfigLoader        = (*mockConfigLoader)(nil)
	_ StoreOpener         = (*mockStoreOpener)(nil)
	_ Store               = (*mockStore)(nil)
	_ DispatcherFactory   = (*mockDispatcherFactory)(nil)
	_ provider.Dispatcher = (*mockDispatcher)(nil)
)
