// Package txn runs multi-step Mongo writes atomically when the deployment
// supports transactions, and sequentially when it does not (standalone
// servers used in development).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mongo error codes returned when transactions or sessions are unavailable.
const (
	codeIllegalOperation          = 20
	codeNoSuchTransaction         = 51
	codeOperationNotSupportedInTx = 263
)

// IsNotSupported reports whether err means the server cannot run the
// operation inside a transaction.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoSuchTransaction, codeOperationNotSupportedInTx:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a transaction on client. If the deployment
// rejects transactions, fn runs again without one and the fallback is
// logged. fn must be safe to retry.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			warnFallback(logger, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warnFallback(logger, err)
		return fn(ctx)
	}
	return err
}

func warnFallback(logger *zap.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("transactions not supported; running without one", zap.Error(err))
}
