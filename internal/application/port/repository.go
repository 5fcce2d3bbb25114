package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	// Create inserts a new bill; the caller assigns its ID
	Create(ctx context.Context, bill *entity.Bill) error

	// GetByID retrieves a bill by its key, or entity.ErrBillNotFound
	GetByID(ctx context.Context, id string) (*entity.Bill, error)

	// Update writes every field of an existing bill, or returns entity.ErrBillNotFound
	Update(ctx context.Context, bill *entity.Bill) error

	// List returns all bills in insertion order
	List(ctx context.Context) ([]*entity.Bill, error)
}

// AttachmentRepository defines persistence operations for stored proof files
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.StoredAttachment) error

	// GetByBillID returns the bill's attachment, or entity.ErrBillNotFound
	GetByBillID(ctx context.Context, billID string) (*entity.StoredAttachment, error)
}

// TransactionManager runs a function inside a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
