package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// AttachmentRepository implements port.AttachmentRepository on sqlite
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a stored proof file for a bill
func (r *AttachmentRepository) Create(ctx context.Context, attachment *entity.StoredAttachment) error {
	query := `
		INSERT INTO bill_attachments (bill_id, storage_path, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		attachment.BillID,
		attachment.StoragePath,
		attachment.MimeType,
		attachment.Size,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment",
			zap.String("bill_id", attachment.BillID),
			zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	attachment.CreatedAt = now
	return nil
}

// GetByBillID retrieves the attachment of a bill
func (r *AttachmentRepository) GetByBillID(ctx context.Context, billID string) (*entity.StoredAttachment, error) {
	query := `
		SELECT bill_id, storage_path, mime_type, size, created_at
		FROM bill_attachments
		WHERE bill_id = ?
	`

	var attachment entity.StoredAttachment
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, billID).Scan(
		&attachment.BillID,
		&attachment.StoragePath,
		&attachment.MimeType,
		&attachment.Size,
		&attachment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBillNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get attachment", zap.String("bill_id", billID), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &attachment, nil
}

var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
