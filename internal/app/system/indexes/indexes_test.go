package indexes_test

import (
	"testing"
	"time"

	conductstore "github.com/dalemusser/flowhub/internal/app/store/codeofconduct"
	memberstore "github.com/dalemusser/flowhub/internal/app/store/members"
	"github.com/dalemusser/flowhub/internal/app/system/indexes"
	"github.com/dalemusser/flowhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCodeOfConductIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection(conductstore.Collection).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	indexNames := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			indexNames[name] = true
		}
	}

	for _, name := range []string{indexes.UniqueVersion, indexes.UniqueActive, indexes.ActiveUploaded} {
		if !indexNames[name] {
			t.Errorf("expected index %q to exist", name)
		}
	}
}

func TestEnsureAll_AtMostOneActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	c := db.Collection(conductstore.Collection)
	doc := func(version int, active bool) bson.M {
		return bson.M{"_id": primitive.NewObjectID(), "version": version, "is_active": active, "uploaded_at": time.Now()}
	}

	if _, err := c.InsertOne(ctx, doc(1, false)); err != nil {
		t.Fatalf("insert inactive v1: %v", err)
	}
	if _, err := c.InsertOne(ctx, doc(2, false)); err != nil {
		t.Fatalf("two inactive documents must be allowed: %v", err)
	}
	if _, err := c.InsertOne(ctx, doc(3, true)); err != nil {
		t.Fatalf("insert active v3: %v", err)
	}
	if _, err := c.InsertOne(ctx, doc(4, true)); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("second active document: got %v, want duplicate key error", err)
	}
	if _, err := c.InsertOne(ctx, doc(3, false)); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("repeated version: got %v, want duplicate key error", err)
	}
}

func TestEnsureAll_MemberEmailUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	c := db.Collection(memberstore.Collection)
	if _, err := c.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "email": "a@example.com", "email_ci": "a@example.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "email": "A@Example.com", "email_ci": "a@example.com"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("duplicate email: got %v, want duplicate key error", err)
	}
}
