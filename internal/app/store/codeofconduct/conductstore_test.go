package conductstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	conductstore "github.com/dalemusser/flowhub/internal/app/store/codeofconduct"
	"github.com/dalemusser/flowhub/internal/app/system/indexes"
	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"github.com/dalemusser/flowhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// repository is the contract both stores implement.
type repository interface {
	MaxVersion(ctx context.Context) (int, error)
	InsertActive(ctx context.Context, doc models.CodeOfConductDocument) (models.CodeOfConductDocument, error)
	Activate(ctx context.Context, id primitive.ObjectID) error
	GetActive(ctx context.Context) (models.CodeOfConductDocument, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.CodeOfConductDocument, error)
	ListByVersionDesc(ctx context.Context) ([]models.CodeOfConductDocument, error)
}

func newMongoStore(t *testing.T) repository {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	return conductstore.New(db, zap.NewNop())
}

func newMemoryStore(t *testing.T) repository {
	return conductstore.NewMemory()
}

var stores = []struct {
	name string
	new  func(t *testing.T) repository
}{
	{"memory", newMemoryStore},
	{"mongo", newMongoStore},
}

func doc(version int) models.CodeOfConductDocument {
	return models.CodeOfConductDocument{
		FileName:         "conduct.docx",
		OriginalFilePath: "code-of-conduct/v1/code-of-conduct-v1.docx",
		HTMLContent:      "<p>Hi</p>",
		UploadedBy:       primitive.NewObjectID(),
		UploadedAt:       time.Now().UTC().Truncate(time.Millisecond),
		Version:          version,
		WordCount:        1,
	}
}

func activeCount(t *testing.T, ctx context.Context, s repository) int {
	t.Helper()
	all, err := s.ListByVersionDesc(ctx)
	if err != nil {
		t.Fatalf("ListByVersionDesc: %v", err)
	}
	n := 0
	for _, d := range all {
		if d.IsActive {
			n++
		}
	}
	return n
}

func TestStore_EmptyState(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			max, err := s.MaxVersion(ctx)
			if err != nil || max != 0 {
				t.Errorf("MaxVersion: got %d, %v; want 0", max, err)
			}
			if _, err := s.GetActive(ctx); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("GetActive: got %v, want ErrNoRecord", err)
			}
			list, err := s.ListByVersionDesc(ctx)
			if err != nil {
				t.Fatalf("ListByVersionDesc: %v", err)
			}
			if list == nil || len(list) != 0 {
				t.Errorf("expected empty non-nil list, got %#v", list)
			}
		})
	}
}

func TestStore_InsertActiveKeepsOneActive(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			var ids []primitive.ObjectID
			for v := 1; v <= 3; v++ {
				got, err := s.InsertActive(ctx, doc(v))
				if err != nil {
					t.Fatalf("InsertActive v%d: %v", v, err)
				}
				if !got.IsActive || got.ID.IsZero() {
					t.Errorf("v%d: expected active with id, got %+v", v, got)
				}
				ids = append(ids, got.ID)
				if n := activeCount(t, ctx, s); n != 1 {
					t.Fatalf("after v%d: %d active, want 1", v, n)
				}
			}

			active, err := s.GetActive(ctx)
			if err != nil {
				t.Fatalf("GetActive: %v", err)
			}
			if active.ID != ids[2] || active.Version != 3 {
				t.Errorf("active: got v%d, want v3", active.Version)
			}
			if active.HTMLContent != "<p>Hi</p>" {
				t.Errorf("GetActive should return HTML, got %q", active.HTMLContent)
			}

			max, _ := s.MaxVersion(ctx)
			if max != 3 {
				t.Errorf("MaxVersion: got %d, want 3", max)
			}
		})
	}
}

func TestStore_DuplicateVersion(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			first, err := s.InsertActive(ctx, doc(1))
			if err != nil {
				t.Fatalf("InsertActive: %v", err)
			}
			if _, err := s.InsertActive(ctx, doc(1)); !errors.Is(err, domain.ErrVersionConflict) {
				t.Fatalf("duplicate version: got %v, want ErrVersionConflict", err)
			}

			// The failed insert must not have deactivated the existing document.
			active, err := s.GetActive(ctx)
			if err != nil || active.ID != first.ID {
				t.Errorf("active after conflict: got %v, %v", active.ID, err)
			}
		})
	}
}

func TestStore_Activate(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			v1, _ := s.InsertActive(ctx, doc(1))
			v2, _ := s.InsertActive(ctx, doc(2))

			if err := s.Activate(ctx, v1.ID); err != nil {
				t.Fatalf("Activate v1: %v", err)
			}
			active, _ := s.GetActive(ctx)
			if active.ID != v1.ID {
				t.Errorf("expected v1 active, got v%d", active.Version)
			}
			if n := activeCount(t, ctx, s); n != 1 {
				t.Errorf("%d active, want 1", n)
			}

			// Re-activating the active document is a no-op.
			if err := s.Activate(ctx, v1.ID); err != nil {
				t.Fatalf("Activate v1 again: %v", err)
			}

			if err := s.Activate(ctx, primitive.NewObjectID()); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("unknown id: got %v, want ErrNoRecord", err)
			}
			active, _ = s.GetActive(ctx)
			if active.ID != v1.ID {
				t.Error("unknown id must leave the active document unchanged")
			}

			list, _ := s.ListByVersionDesc(ctx)
			if len(list) != 2 || list[0].ID != v2.ID || list[1].ID != v1.ID {
				t.Errorf("list order: got %+v", list)
			}
			if list[0].IsActive || !list[1].IsActive {
				t.Error("expected only v1 flagged active in the list")
			}
		})
	}
}

func TestStore_GetByID(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			in, _ := s.InsertActive(ctx, doc(7))
			got, err := s.GetByID(ctx, in.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.Version != 7 || got.FileName != "conduct.docx" {
				t.Errorf("GetByID: got %+v", got)
			}
			if _, err := s.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("unknown id: got %v", err)
			}
		})
	}
}

func TestMemory_ActiveCount(t *testing.T) {
	m := conductstore.NewMemory()
	ctx := context.Background()
	if m.ActiveCount() != 0 {
		t.Fatal("expected no active documents")
	}
	_, _ = m.InsertActive(ctx, doc(1))
	_, _ = m.InsertActive(ctx, doc(2))
	if m.ActiveCount() != 1 {
		t.Errorf("ActiveCount: got %d, want 1", m.ActiveCount())
	}
}
