package mongo

import (
	"alcyxob/fitness-coach/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Aliases so helpers in this package read naturally next to the driver's own names.
var (
	errNotFound  = repository.ErrNotFound
	errDuplicate = repository.ErrDuplicate
)

// mongoTransactor implements repository.Transactor with multi-document transactions.
type mongoTransactor struct {
	client *mongo.Client
}

// NewMongoTransactor creates a Transactor bound to the given client.
func NewMongoTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithinTx runs fn inside a transaction. A ctx that already carries a session
// joins it instead of starting a nested transaction, which Mongo does not support.
func (t *mongoTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// writeErr maps driver write errors onto repository errors.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errDuplicate
	}
	return err
}
