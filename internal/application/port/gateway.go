package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillStore is the persistence API the client talks to
type BillStore interface {
	// List returns the raw bill collection in backend order
	List(ctx context.Context) ([]entity.Bill, error)

	// Create uploads a proof file and creates the bare draft bill it belongs to
	Create(ctx context.Context, payload *entity.UploadPayload) (*entity.UploadRef, error)

	// Update writes the submitted fields onto the draft with the same ID
	Update(ctx context.Context, bill *entity.Bill) error
}

// StorageGateway gives access to the backend collections
type StorageGateway interface {
	Bills() BillStore
}
