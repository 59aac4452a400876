package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Persister хранилище снимков сессий.
type Persister interface {
	// Load возвращает снимок и признак его наличия.
	Load(ctx context.Context, id string) (models.Session, bool, error)
	Save(ctx context.Context, id string, s models.Session) error
}

// KV кеш ключ-значение, например Redis.
type KV interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CachePersister хранит снимки в KV в JSON с временем жизни ttl.
type CachePersister struct {
	kv  KV
	ttl time.Duration
}

// NewCachePersister создает хранилище снимков поверх kv.
func NewCachePersister(kv KV, ttl time.Duration) *CachePersister {
	return &CachePersister{kv: kv, ttl: ttl}
}

func snapshotKey(id string) string {
	return "session:" + id
}

// Load читает снимок.
func (p *CachePersister) Load(ctx context.Context, id string) (models.Session, bool, error) {
	const op = "session.CachePersister.Load"
	var s models.Session
	found, err := p.kv.Get(ctx, snapshotKey(id), &s)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return s, found, nil
}

// Save записывает снимок и продлевает его время жизни.
func (p *CachePersister) Save(ctx context.Context, id string, s models.Session) error {
	const op = "session.CachePersister.Save"
	if err := p.kv.Set(ctx, snapshotKey(id), s, p.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MemoryPersister снимки в памяти процесса.
type MemoryPersister struct {
	mu        sync.Mutex
	snapshots map[string]models.Session
}

// NewMemoryPersister создает пустое хранилище.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snapshots: make(map[string]models.Session)}
}

// Load возвращает копию снимка.
func (p *MemoryPersister) Load(_ context.Context, id string) (models.Session, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.snapshots[id]
	return cloneSession(s), ok, nil
}

// Save сохраняет копию снимка.
func (p *MemoryPersister) Save(_ context.Context, id string, s models.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[id] = cloneSession(s)
	return nil
}

func cloneSession(s models.Session) models.Session {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	if s.PendingUpgrade != nil {
		p := *s.PendingUpgrade
		s.PendingUpgrade = &p
	}
	return s
}
