// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is shared with the member management front end; this
// service reads members and writes only the Code of Conduct fields.
const Collection = "members"

var ErrDuplicateEmail = errors.New("a member with this email already exists")

var errEmailRequired = &domain.ValidationError{Msg: "email is required"}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Database is the database the store writes to.
func (s *Store) Database() *mongo.Database { return s.c.Database() }

// Create inserts m, assigning ID and CreatedAt.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	if strings.TrimSpace(m.Email) == "" {
		return models.Member{}, errEmailRequired
	}
	m.EmailCI = text.Fold(m.Email)
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicateEmail
		}
		return models.Member{}, err
	}
	return m, nil
}

// GetByID returns the member or domain.ErrNoRecord.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Member{}, domain.ErrNoRecord
	}
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// SetConductDocument records a newly stored signed PDF.
func (s *Store) SetConductDocument(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error {
	at = at.UTC()
	return s.update(ctx, id, bson.M{
		"$set": bson.M{
			"code_of_conduct_pdf_path":     key,
			"has_uploaded_code_of_conduct": true,
			"code_of_conduct_uploaded_at":  at,
			"updated_at":                   time.Now().UTC(),
		},
	})
}

// ClearConductDocument removes the signed PDF fields together.
func (s *Store) ClearConductDocument(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$set": bson.M{
			"has_uploaded_code_of_conduct": false,
			"updated_at":                   time.Now().UTC(),
		},
		"$unset": bson.M{
			"code_of_conduct_pdf_path":    "",
			"code_of_conduct_uploaded_at": "",
		},
	})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, upd bson.M) error {
	res, err := s.c.UpdateByID(ctx, id, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoRecord
	}
	return nil
}
