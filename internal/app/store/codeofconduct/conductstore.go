// internal/app/store/codeofconduct/conductstore.go
package conductstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/txn"
	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection holds every uploaded Code of Conduct version.
const Collection = "code_of_conduct_documents"

type Store struct {
	c      *mongo.Collection
	client *mongo.Client
	log    *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{c: db.Collection(Collection), client: db.Client(), log: logger}
}

// MaxVersion returns the highest stored version, or 0 when none exist.
func (s *Store) MaxVersion(ctx context.Context) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "version", Value: -1}}).
		SetProjection(bson.M{"version": 1})
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

// InsertActive deactivates every active document and inserts doc as the
// active one, in a single transaction where supported. A version that is
// already taken yields domain.ErrVersionConflict.
func (s *Store) InsertActive(ctx context.Context, doc models.CodeOfConductDocument) (models.CodeOfConductDocument, error) {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	// Insert inactive first so a version conflict surfaces before any
	// existing document is touched when running without a transaction.
	doc.IsActive = false
	err := txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, doc); err != nil {
			if wafflemongo.IsDup(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert: %w", err)
		}
		return s.makeOnlyActive(ctx, doc.ID)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrVersionConflict) {
			// Without a transaction the insert may have landed.
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, derr := s.c.DeleteOne(cctx, bson.M{"_id": doc.ID, "is_active": false}); derr != nil {
				s.log.Warn("failed to remove half-inserted document",
					zap.String("id", doc.ID.Hex()),
					zap.Int("version", doc.Version),
					zap.Error(derr))
			}
		}
		return models.CodeOfConductDocument{}, err
	}
	doc.IsActive = true
	return doc, nil
}

// Activate makes id the only active document. It returns
// domain.ErrNoRecord when id is unknown, leaving the current state alone.
func (s *Store) Activate(ctx context.Context, id primitive.ObjectID) error {
	return txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNoRecord
		}
		return s.makeOnlyActive(ctx, id)
	})
}

// makeOnlyActive clears every other active flag before setting id's, so
// the partial unique index never sees two active documents.
func (s *Store) makeOnlyActive(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.c.UpdateMany(ctx,
		bson.M{"is_active": true, "_id": bson.M{"$ne": id}},
		bson.M{"$set": bson.M{"is_active": false}},
	); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_active": true}}); err != nil {
		if wafflemongo.IsDup(err) {
			return fmt.Errorf("activate: another document became active concurrently: %w", err)
		}
		return fmt.Errorf("activate: %w", err)
	}
	return nil
}

// GetActive returns the active document or domain.ErrNoRecord.
func (s *Store) GetActive(ctx context.Context) (models.CodeOfConductDocument, error) {
	return s.findOne(ctx, bson.M{"is_active": true})
}

// GetByID returns the document or domain.ErrNoRecord.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CodeOfConductDocument, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// ListByVersionDesc returns every version, newest first. The HTML body is
// left out; callers that need it fetch the single document.
func (s *Store) ListByVersionDesc(ctx context.Context) ([]models.CodeOfConductDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "version", Value: -1}}).
		SetProjection(bson.M{"html_content": 0})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CodeOfConductDocument{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.CodeOfConductDocument, error) {
	var doc models.CodeOfConductDocument
	err := s.c.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CodeOfConductDocument{}, domain.ErrNoRecord
	}
	if err != nil {
		return models.CodeOfConductDocument{}, err
	}
	return doc, nil
}
