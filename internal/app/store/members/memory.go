package memberstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process member store for tests and local runs.
type Memory struct {
	mu      sync.Mutex
	members map[primitive.ObjectID]models.Member

	// FailUpdates, when set, is returned by SetConductDocument.
	FailUpdates error
}

func NewMemory() *Memory {
	return &Memory{members: make(map[primitive.ObjectID]models.Member)}
}

func (m *Memory) Create(ctx context.Context, mem models.Member) (models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(mem.Email) == "" {
		return models.Member{}, errEmailRequired
	}
	mem.EmailCI = text.Fold(mem.Email)
	for _, existing := range m.members {
		if existing.EmailCI == mem.EmailCI {
			return models.Member{}, ErrDuplicateEmail
		}
	}
	if mem.ID.IsZero() {
		mem.ID = primitive.NewObjectID()
	}
	mem.CreatedAt = time.Now().UTC()
	m.members[mem.ID] = mem
	return mem, nil
}

func (m *Memory) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return models.Member{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[id]
	if !ok {
		return models.Member{}, domain.ErrNoRecord
	}
	return mem, nil
}

func (m *Memory) SetConductDocument(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpdates != nil {
		return m.FailUpdates
	}
	mem, ok := m.members[id]
	if !ok {
		return domain.ErrNoRecord
	}
	at = at.UTC()
	mem.CodeOfConductPDFPath = &key
	mem.HasUploadedCodeOfConduct = true
	mem.CodeOfConductUploadedAt = &at
	m.members[id] = mem
	return nil
}

func (m *Memory) ClearConductDocument(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[id]
	if !ok {
		return domain.ErrNoRecord
	}
	mem.CodeOfConductPDFPath = nil
	mem.HasUploadedCodeOfConduct = false
	mem.CodeOfConductUploadedAt = nil
	m.members[id] = mem
	return nil
}
