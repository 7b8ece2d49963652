// Package txn runs multi-collection writes inside a MongoDB transaction when
// the deployment supports one, and falls back to sequential execution on
// standalone servers.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions or sessions are unavailable.
//   - 20:  IllegalOperation (transaction numbers on a standalone)
//   - 51:  IllegalOperation on older servers
//   - 263: OperationNotSupportedInTransaction
var notSupportedCodes = []int{20, 51, 263}

// IsNotSupported reports whether err means the server cannot run a
// transaction, as opposed to the transaction body failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		for _, code := range notSupportedCodes {
			if se.HasErrorCode(code) {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a transaction on db's client. If the server does not
// support transactions, fn runs once more without one and the fallback is
// logged at debug level.
//
// fn must be safe to retry: the driver may call it more than once on
// transient transaction errors.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("sessions not supported; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions not supported; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}
