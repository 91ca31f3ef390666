package vectorindex

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/edumentor-backend/internal/platform/logger"
)

// Manager maps document IDs to their indexes. Rebuild swaps a fully built
// index under the lock, so readers always see either the old index or the new
// one, never an empty gap.
type Manager struct {
	mu      sync.RWMutex
	indexes map[uuid.UUID]*Index
	log     *logger.Logger
}

func NewManager(baseLog *logger.Logger) *Manager {
	return &Manager{
		indexes: make(map[uuid.UUID]*Index),
		log:     baseLog.With("service", "vectorindex"),
	}
}

// Rebuild builds the index outside the lock and installs it atomically.
func (m *Manager) Rebuild(documentID uuid.UUID, vectors [][]float32) error {
	idx, err := Build(vectors)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.indexes[documentID] = idx
	m.mu.Unlock()
	m.log.Debug("Index rebuilt", "document_id", documentID, "vectors", idx.Len())
	return nil
}

// Get returns the document's index, or nil when none is installed.
func (m *Manager) Get(documentID uuid.UUID) *Index {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexes[documentID]
}

func (m *Manager) Delete(documentID uuid.UUID) {
	m.mu.Lock()
	delete(m.indexes, documentID)
	m.mu.Unlock()
}
