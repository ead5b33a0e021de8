package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spinwheel/internal/models"
)

// MemoryStore keeps everything in process memory. It is the fallback
// backend when no database is reachable; data is lost on restart.
// A single mutex covers both maps, which is plenty at event scale and
// makes the conditional writes trivially atomic.
type MemoryStore struct {
	mu           sync.Mutex
	participants map[string]models.Participant
	slots        []models.PrizeSlot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]models.Participant),
	}
}

func (m *MemoryStore) CreateParticipant(_ context.Context, name, phone string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := models.Participant{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	m.participants[p.ID] = p
	return p, nil
}

func (m *MemoryStore) Participant(_ context.Context, id string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[id]
	if !ok {
		return models.Participant{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) PrizeSlots(_ context.Context) ([]models.PrizeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.PrizeSlot, len(m.slots))
	copy(out, m.slots)
	return out, nil
}

func (m *MemoryStore) IncrementWinners(_ context.Context, slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		if m.slots[i].ID != slotID {
			continue
		}
		if m.slots[i].CurrentWinners >= m.slots[i].MaxWinners {
			return ErrCapacityExceeded
		}
		m.slots[i].CurrentWinners++
		return nil
	}
	// Unknown slot: the caller demotes to "no win" either way.
	return ErrCapacityExceeded
}

func (m *MemoryStore) ClaimSpinResult(_ context.Context, id, label string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.participants[id]
	if !ok {
		return "", false, ErrNotFound
	}
	if p.SpinResult != "" {
		return p.SpinResult, false, nil
	}
	p.SpinResult = label
	m.participants[id] = p
	return label, true, nil
}

func (m *MemoryStore) Initialize(_ context.Context, slots []models.PrizeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.slots) > 0 {
		return nil
	}
	m.slots = make([]models.PrizeSlot, len(slots))
	copy(m.slots, slots)
	return nil
}

func (m *MemoryStore) ResetWinners(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		m.slots[i].CurrentWinners = 0
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
