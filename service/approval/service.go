package approval

import (
	"context"

	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/messaging"
)

// Service applies operator transitions to vault records.
type Service interface {
	// ListPending returns records awaiting a decision.
	ListPending(ctx context.Context, filters ...PendingFilter) ([]*model.Item, error)

	// Decide approves or rejects a pending record.
	Decide(ctx context.Context, id string, action Action) (*Decision, error)

	// Promote moves a record from needs action into pending approval.
	Promote(ctx context.Context, id string) (*Decision, error)

	// Complete moves a record from needs action straight to done.
	Complete(ctx context.Context, id string) (*Decision, error)

	Queue() messaging.Queue[Event]
}
