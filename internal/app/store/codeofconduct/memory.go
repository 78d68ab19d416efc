package conductstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process store with the same contract as Store. One
// mutex covers every operation, so InsertActive and Activate are atomic.
type Memory struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.CodeOfConductDocument
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[primitive.ObjectID]models.CodeOfConductDocument)}
}

func (m *Memory) MaxVersion(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, d := range m.docs {
		if d.Version > max {
			max = d.Version
		}
	}
	return max, nil
}

func (m *Memory) InsertActive(ctx context.Context, doc models.CodeOfConductDocument) (models.CodeOfConductDocument, error) {
	if err := ctx.Err(); err != nil {
		return models.CodeOfConductDocument{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.docs {
		if d.Version == doc.Version {
			return models.CodeOfConductDocument{}, domain.ErrVersionConflict
		}
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.IsActive = true
	m.deactivateAllLocked()
	m.docs[doc.ID] = doc
	return doc, nil
}

func (m *Memory) Activate(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return domain.ErrNoRecord
	}
	m.deactivateAllLocked()
	doc.IsActive = true
	m.docs[id] = doc
	return nil
}

func (m *Memory) GetActive(ctx context.Context) (models.CodeOfConductDocument, error) {
	if err := ctx.Err(); err != nil {
		return models.CodeOfConductDocument{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.IsActive {
			return d, nil
		}
	}
	return models.CodeOfConductDocument{}, domain.ErrNoRecord
}

func (m *Memory) GetByID(ctx context.Context, id primitive.ObjectID) (models.CodeOfConductDocument, error) {
	if err := ctx.Err(); err != nil {
		return models.CodeOfConductDocument{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return models.CodeOfConductDocument{}, domain.ErrNoRecord
	}
	return d, nil
}

func (m *Memory) ListByVersionDesc(ctx context.Context) ([]models.CodeOfConductDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CodeOfConductDocument, 0, len(m.docs))
	for _, d := range m.docs {
		d.HTMLContent = ""
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// ActiveCount reports how many documents are flagged active.
func (m *Memory) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.docs {
		if d.IsActive {
			n++
		}
	}
	return n
}

func (m *Memory) deactivateAllLocked() {
	for id, d := range m.docs {
		if d.IsActive {
			d.IsActive = false
			m.docs[id] = d
		}
	}
}
