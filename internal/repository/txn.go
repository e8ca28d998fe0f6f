package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TxnRunner executes fn inside one atomic multi-document transaction. If fn
// returns an error every write made within it is rolled back and the error is
// returned unchanged, so callers can classify it.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error)
}

type mongoTxnRunner struct {
	client        *mongo.Client
	maxCommitTime time.Duration
}

// NewMongoTxnRunner builds a runner with majority write concern, snapshot
// read concern and a bounded commit time. A commit that exceeds the bound
// fails with a timeout instead of hanging.
func NewMongoTxnRunner(client *mongo.Client, maxCommitTime time.Duration) TxnRunner {
	return &mongoTxnRunner{client: client, maxCommitTime: maxCommitTime}
}

func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetWriteConcern(writeconcern.Majority()).
		SetReadConcern(readconcern.Snapshot()).
		SetMaxCommitTime(&r.maxCommitTime)

	return session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return fn(sc)
	}, txnOpts)
}
