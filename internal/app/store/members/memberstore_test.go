package memberstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memberstore "github.com/dalemusser/flowhub/internal/app/store/members"
	"github.com/dalemusser/flowhub/internal/app/system/indexes"
	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"github.com/dalemusser/flowhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type repository interface {
	Create(ctx context.Context, m models.Member) (models.Member, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error)
	SetConductDocument(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error
	ClearConductDocument(ctx context.Context, id primitive.ObjectID) error
}

var stores = []struct {
	name string
	new  func(t *testing.T) repository
}{
	{"memory", func(t *testing.T) repository { return memberstore.NewMemory() }},
	{"mongo", func(t *testing.T) repository { return memberstore.New(testutil.SetupTestDB(t)) }},
}

func TestStore_ConductDocumentLifecycle(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			m, err := s.Create(ctx, models.Member{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: "member", Status: "active"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := s.GetByID(ctx, m.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.HasCodeOfConduct() || got.HasUploadedCodeOfConduct {
				t.Fatal("new member should have no document")
			}
			if got.FullName() != "Grace Hopper" {
				t.Errorf("FullName: got %q", got.FullName())
			}

			at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
			key := "code-of-conduct/members/" + m.ID.Hex() + "/CodeOfConduct_20240601093000.pdf"
			if err := s.SetConductDocument(ctx, m.ID, key, at); err != nil {
				t.Fatalf("SetConductDocument: %v", err)
			}
			got, _ = s.GetByID(ctx, m.ID)
			if !got.HasCodeOfConduct() || *got.CodeOfConductPDFPath != key || !got.HasUploadedCodeOfConduct {
				t.Errorf("after set: %+v", got)
			}
			if got.CodeOfConductUploadedAt == nil || !got.CodeOfConductUploadedAt.Equal(at) {
				t.Errorf("uploaded at: got %v, want %v", got.CodeOfConductUploadedAt, at)
			}

			if err := s.ClearConductDocument(ctx, m.ID); err != nil {
				t.Fatalf("ClearConductDocument: %v", err)
			}
			got, _ = s.GetByID(ctx, m.ID)
			if got.HasCodeOfConduct() || got.HasUploadedCodeOfConduct || got.CodeOfConductUploadedAt != nil {
				t.Errorf("after clear: %+v", got)
			}
		})
	}
}

func TestStore_UnknownMember(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()
			id := primitive.NewObjectID()

			if _, err := s.GetByID(ctx, id); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("GetByID: got %v", err)
			}
			if err := s.SetConductDocument(ctx, id, "k", time.Now()); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("SetConductDocument: got %v", err)
			}
			if err := s.ClearConductDocument(ctx, id); !errors.Is(err, domain.ErrNoRecord) {
				t.Errorf("ClearConductDocument: got %v", err)
			}
		})
	}
}

func TestStore_EmailUniqueIgnoringCase(t *testing.T) {
	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			s := st.new(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()
			if ms, ok := s.(*memberstore.Store); ok {
				if err := indexes.EnsureAll(ctx, ms.Database(), zap.NewNop()); err != nil {
					t.Fatalf("EnsureAll: %v", err)
				}
			}

			if _, err := s.Create(ctx, models.Member{Email: "Bass@Example.com"}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := s.Create(ctx, models.Member{Email: "bass@example.COM"}); !errors.Is(err, memberstore.ErrDuplicateEmail) {
				t.Errorf("duplicate: got %v", err)
			}
			if _, err := s.Create(ctx, models.Member{Email: "  "}); !domain.IsValidation(err) {
				t.Errorf("blank email: got %v", err)
			}
		})
	}
}
