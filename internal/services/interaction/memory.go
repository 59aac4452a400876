package interaction

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

type ownedRecord struct {
	accountID string
	rec       models.RecordingRecord
}

// MemoryRepository хранилище записей в памяти для запуска без PostgreSQL.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]ownedRecord
}

// NewMemoryRepository создает пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]ownedRecord)}
}

// SaveInteraction сохраняет запись.
func (m *MemoryRepository) SaveInteraction(_ context.Context, accountID string, rec models.RecordingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = ownedRecord{accountID: accountID, rec: rec}
	return nil
}

// ListInteractions последние limit записей, новые первыми.
func (m *MemoryRepository) ListInteractions(_ context.Context, accountID string, limit int) ([]models.RecordingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RecordingRecord, 0)
	for _, r := range m.records {
		if r.accountID == accountID {
			out = append(out, r.rec)
		}
	}
	slices.SortFunc(out, func(a, b models.RecordingRecord) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetInteraction запись и ее владелец.
func (m *MemoryRepository) GetInteraction(_ context.Context, id string) (*models.RecordingRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, "", models.ErrRecordNotFound
	}
	rec := r.rec
	return &rec, r.accountID, nil
}

// SaveSummaryCard сохраняет карточку.
func (m *MemoryRepository) SaveSummaryCard(_ context.Context, id, card string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	r.rec.Summary = card
	m.records[id] = r
	return nil
}
