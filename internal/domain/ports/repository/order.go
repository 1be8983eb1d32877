package repository

import (
	"context"

	"modena-payment-service/internal/domain/model"
)

// OrderRepository is the Order Store port. The store owns the order record;
// this service only drives its payment lifecycle.
type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Order, error)

	// MarkPending moves the order to payment-pending and records a note.
	MarkPending(ctx context.Context, id int64, note string) error

	// MarkPaid completes payment atomically gated on needs_payment. It returns
	// true only for the invocation that won the gate; losers observe false and
	// must perform no further mutation.
	MarkPaid(ctx context.Context, id int64, note string) (bool, error)

	// SaveApplicationMeta persists the modena-application-id and the
	// human-readable method label. Write-once: saving a different application
	// id over an existing one fails with domain.ErrMetadataConflict.
	SaveApplicationMeta(ctx context.Context, id int64, applicationID, methodLabel string) error

	AddOrderNote(ctx context.Context, id int64, note string) error
}
