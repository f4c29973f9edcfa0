package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

// --- Mock implementations ---

type memStateStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMemStateStore() *memStateStore {
	return &memStateStore{values: map[string]string{}}
}

func (m *memStateStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStateStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStateStore) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

type mockFetcher struct {
	mu      sync.Mutex
	records []model.ListRecord
	err     error
	calls   int
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockFetcher) FetchList(_ context.Context) ([]model.ListRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type blockCall struct {
	Cred     model.Credential
	ArtistID string
}

type mockWriter struct {
	mu      sync.Mutex
	calls   []blockCall
	results map[string]error
	onWrite func(artistID string)
}

func (m *mockWriter) BlockArtist(_ context.Context, cred model.Credential, artistID string) error {
	if m.onWrite != nil {
		m.onWrite(artistID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, blockCall{Cred: cred, ArtistID: artistID})
	return m.results[artistID]
}

func (m *mockWriter) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		ids = append(ids, c.ArtistID)
	}
	return ids
}

type mockResolver struct {
	mu      sync.Mutex
	account string
	err     error
	tokens  []string
}

func (m *mockResolver) ResolveAccount(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	return m.account, m.err
}

type mockRecapturer struct {
	mu    sync.Mutex
	armed int
}

func (m *mockRecapturer) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed++
}

func (m *mockRecapturer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

var (
	errExpired = fmt.Errorf("block artist: %w", driven.ErrAuthExpired)
	errBoom    = errors.New("boom")
)

// atomicMemStore adds an atomic Update to memStateStore.
type atomicMemStore struct {
	*memStateStore
	updates int
}

func newAtomicMemStore() *atomicMemStore {
	return &atomicMemStore{memStateStore: newMemStateStore()}
}

func (m *atomicMemStore) Update(_ context.Context, key string, fn func(string, bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	v, ok := m.values[key]
	next, err := fn(v, ok)
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}
