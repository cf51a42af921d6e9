package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ruslanbay/codedrill/internal/domain/entities"
	"github.com/ruslanbay/codedrill/internal/infra/postgres/repository"
)

func pairKey(userID, problemID string) string {
	return userID + "/" + problemID
}

// memStore is an in-memory SchedulerStore. Each WithinTx call works on a
// snapshot and publishes it only on success, mirroring the all-or-nothing
// contract of the real store. The mutex serializes transactions, which is a
// stricter version of the real per-pair row lock.
type memStore struct {
	mu      sync.Mutex
	items   map[string]*entities.SchedulingItem
	history []entities.ReviewHistoryEntry

	txCalls int
	failTx  int // number of upcoming transactions to fail transiently
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*entities.SchedulingItem)}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txCalls++
	if m.failTx > 0 {
		m.failTx--
		return fmt.Errorf("%w: injected conflict", repository.ErrTransient)
	}

	shadow := m.snapshot()
	if err := fn(ctx, shadow); err != nil {
		return err
	}

	m.items = shadow.items
	m.history = shadow.history
	return nil
}

func (m *memStore) snapshot() *memTx {
	items := make(map[string]*entities.SchedulingItem, len(m.items))
	for k, v := range m.items {
		cp := *v
		items[k] = &cp
	}
	history := make([]entities.ReviewHistoryEntry, len(m.history))
	copy(history, m.history)
	return &memTx{items: items, history: history}
}

func (m *memStore) item(userID, problemID string) *entities.SchedulingItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[pairKey(userID, problemID)]
}

func (m *memStore) historyFor(userID, problemID string) []entities.ReviewHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.items[pairKey(userID, problemID)]
	if item == nil {
		return nil
	}
	var out []entities.ReviewHistoryEntry
	for _, e := range m.history {
		if e.SchedulingItemID == item.ID {
			out = append(out, e)
		}
	}
	return out
}

// memTx implements repository.Tx over the snapshot.
type memTx struct {
	items   map[string]*entities.SchedulingItem
	history []entities.ReviewHistoryEntry
}

func (t *memTx) ItemForUpdate(_ context.Context, userID, problemID string) (*entities.SchedulingItem, error) {
	item, ok := t.items[pairKey(userID, problemID)]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (t *memTx) CreateItem(_ context.Context, item *entities.SchedulingItem) error {
	key := pairKey(item.UserID, item.ProblemID)
	if _, exists := t.items[key]; exists {
		return fmt.Errorf("%w: concurrent create for pair (%s, %s)", repository.ErrTransient, item.UserID, item.ProblemID)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	cp := *item
	t.items[key] = &cp
	return nil
}

func (t *memTx) UpdateItem(_ context.Context, item *entities.SchedulingItem) error {
	for key, existing := range t.items {
		if existing.ID == item.ID {
			cp := *item
			t.items[key] = &cp
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (t *memTx) DeactivateItem(_ context.Context, userID, problemID string) error {
	if item, ok := t.items[pairKey(userID, problemID)]; ok && item.Active {
		item.Active = false
		item.DueAt = nil
	}
	return nil
}

func (t *memTx) AppendHistory(_ context.Context, entry *entities.ReviewHistoryEntry) error {
	entry.ID = int64(len(t.history) + 1)
	t.history = append(t.history, *entry)
	return nil
}

// memCatalog is an in-memory ProblemCatalog.
type memCatalog struct {
	reviewable map[string]bool
}

func (c *memCatalog) IsReviewable(_ context.Context, problemID string) (bool, error) {
	return c.reviewable[problemID], nil
}
