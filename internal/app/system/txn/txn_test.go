package txn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/flowhub/internal/app/system/txn"
	"github.com/dalemusser/flowhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("duplicate key"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"code 51", mongo.CommandError{Code: 51}, true},
		{"code 263", mongo.CommandError{Code: 263}, true},
		{"unrelated code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped code 20", fmt.Errorf("activate version: %w", mongo.CommandError{Code: 20}), true},
		{"replica set message", errors.New("This MongoDB deployment does not support retryable writes; Transaction requires a Replica Set"), true},
		{"sessions not supported", errors.New("sessions are NOT SUPPORTED by this server"), true},
		{"transaction in session", errors.New("cannot start transaction in current session state"), true},
		{"illegal operation", errors.New("Illegal Operation during commit"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_NilClientRunsDirectly(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := txn.Run(context.Background(), nil, zap.NewNop(), func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRun_AppliesWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	core, logs := observer.New(zap.WarnLevel)
	coll := db.Collection("txn_probe")

	err := txn.Run(ctx, db.Client(), zap.New(core), func(ctx context.Context) error {
		if _, err := coll.InsertOne(ctx, bson.M{"_id": "a", "active": false}); err != nil {
			return err
		}
		_, err := coll.UpdateOne(ctx, bson.M{"_id": "a"}, bson.M{"$set": bson.M{"active": true}})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got struct {
		Active bool `bson:"active"`
	}
	if err := coll.FindOne(ctx, bson.M{"_id": "a"}).Decode(&got); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if !got.Active {
		t.Error("expected both writes applied")
	}
	// Standalone servers fall back with a single warning.
	if n := logs.Len(); n > 1 {
		t.Errorf("expected at most one fallback warning, got %d", n)
	}
}
