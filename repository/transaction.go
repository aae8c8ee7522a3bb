package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor groups multi-collection writes. With Enabled unset (standalone
// servers) fn runs directly against ctx.
type Transactor struct {
	Client  *mongo.Client
	Enabled bool
}

func (t *Transactor) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || !t.Enabled || t.Client == nil {
		return fn(ctx)
	}

	session, err := t.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
