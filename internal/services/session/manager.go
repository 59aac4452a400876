package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// ErrNotFound сессии нет ни в памяти, ни в хранилище снимков.
var ErrNotFound = errors.New("session not found")

// Manager владеет сессиями процесса. Снимок сессии читается из Persister
// один раз, при первом обращении к ней после старта или вытеснения.
type Manager struct {
	deps     Deps
	validate *validator.Validate
	newID    func() string

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager создает менеджер сессий.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps.withDefaults(),
		validate: validator.New(),
		newID:    uuid.NewString,
		stores:   make(map[string]*Store),
	}
}

// Create создает анонимную сессию.
func (m *Manager) Create(ctx context.Context) (*Store, error) {
	const op = "session.Manager.Create"

	store := newStore(m.newID(), m.deps, m.validate, models.NewSession())
	if err := m.deps.Persister.Save(ctx, store.ID(), models.NewSession()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.stores[store.ID()] = store
	n := len(m.stores)
	m.mu.Unlock()

	m.deps.Metrics.SetActiveSessions(n)
	return store, nil
}

// Get возвращает сессию по id, при необходимости восстанавливая ее из снимка.
func (m *Manager) Get(ctx context.Context, id string) (*Store, error) {
	const op = "session.Manager.Get"

	m.mu.Lock()
	store, ok := m.stores[id]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	snap, found, err := m.deps.Persister.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	m.mu.Lock()
	if existing, ok := m.stores[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	store = newStore(id, m.deps, m.validate, snap)
	m.stores[id] = store
	n := len(m.stores)
	m.mu.Unlock()

	m.deps.Metrics.SetActiveSessions(n)
	m.deps.Log.Debug("session restored from snapshot", slog.String("session_id", id))
	return store, nil
}

// EvictIdle выгружает из памяти сессии без обращений дольше idle.
// Снимки остаются в хранилище. Возвращает число выгруженных сессий.
func (m *Manager) EvictIdle(idle time.Duration) int {
	deadline := m.deps.Now().Add(-idle)

	m.mu.Lock()
	var evicted []*Store
	for id, store := range m.stores {
		if store.LastSeen().Before(deadline) && store.RecordingStatus().State == models.RecordingIdle {
			evicted = append(evicted, store)
			delete(m.stores, id)
		}
	}
	n := len(m.stores)
	m.mu.Unlock()

	for _, store := range evicted {
		store.Close()
	}
	m.deps.Metrics.SetActiveSessions(n)
	return len(evicted)
}

// ReconcilePending сверяет с платежным провайдером сессии с ожидающим оформлением.
func (m *Manager) ReconcilePending(ctx context.Context) int {
	const op = "session.Manager.ReconcilePending"
	log := m.deps.Log.With(slog.String("op", op))

	m.mu.Lock()
	pending := make([]*Store, 0)
	for _, store := range m.stores {
		if store.PendingUpgrade() {
			pending = append(pending, store)
		}
	}
	m.mu.Unlock()

	for _, store := range pending {
		if ctx.Err() != nil {
			break
		}
		if _, err := store.Reconcile(ctx); err != nil {
			log.Warn("reconcile failed", slog.String("session_id", store.ID()), sl.Err(err))
		}
	}
	return len(pending)
}

// Len число сессий в памяти.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Close закрывает все сессии.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	for _, store := range stores {
		store.Close()
	}
}
