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

const billColumns = `id, email, type, name, amount, date, vat, pct, commentary,
	file_url, file_name, status, created_at, updated_at`

// BillRepository implements port.BillRepository on sqlite
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a bill. The ID must already be assigned.
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("failed to create bill: empty id")
	}

	now := time.Now()
	query := `
		INSERT INTO bills (` + billColumns + `, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM bills))
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		nullString(bill.FileURL),
		nullString(bill.FileName),
		bill.Status,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("bill_id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	bill.CreatedAt = now
	bill.UpdatedAt = now
	return nil
}

// GetByID retrieves a bill by its key
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrBillNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get bill by ID", zap.String("bill_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// Update overwrites every field of the bill with the same key
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	now := time.Now()
	query := `
		UPDATE bills SET
			email = ?, type = ?, name = ?, amount = ?, date = ?, vat = ?,
			pct = ?, commentary = ?, file_url = ?, file_name = ?, status = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		nullString(bill.FileURL),
		nullString(bill.FileName),
		bill.Status,
		now,
		bill.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("bill_id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return entity.ErrBillNotFound
	}

	bill.UpdatedAt = now
	return nil
}

// List returns all bills in insertion order
func (r *BillRepository) List(ctx context.Context) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY seq`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*entity.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*entity.Bill, error) {
	var bill entity.Bill
	var fileURL, fileName sql.NullString

	err := row.Scan(
		&bill.ID,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&bill.Amount,
		&bill.Date,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&fileURL,
		&fileName,
		&bill.Status,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fileURL.Valid {
		bill.FileURL = &fileURL.String
	}
	if fileName.Valid {
		bill.FileName = &fileName.String
	}
	return &bill, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ port.BillRepository = (*BillRepository)(nil)
