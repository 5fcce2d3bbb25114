// Package bolt persists bills in an embedded bbolt file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Bucket names
const (
	BucketBills       = "bills"
	BucketBillOrder   = "bill_order"
	BucketAttachments = "bill_attachments"
)

type txKey struct{}

// Store implements the bill and attachment repositories and the
// transaction manager on one bbolt database.
type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open opens (or creates) the database file and its buckets
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketBills, BucketBillOrder, BucketAttachments} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Bolt database opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	s.logger.Info("Closing bolt database")
	return s.db.Close()
}

// Ping checks that the database is still usable
func (s *Store) Ping() error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(BucketBills)) == nil {
			return fmt.Errorf("bucket %s not found", BucketBills)
		}
		return nil
	})
}

// WithTransaction runs fn inside one read-write transaction carried by ctx
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Bills returns the store as a port.BillRepository
func (s *Store) Bills() port.BillRepository {
	return billRepository{s}
}

// Attachments returns the store as a port.AttachmentRepository
func (s *Store) Attachments() port.AttachmentRepository {
	return attachmentRepository{s}
}

func txFrom(ctx context.Context) *bolt.Tx {
	tx, _ := ctx.Value(txKey{}).(*bolt.Tx)
	return tx
}

func (s *Store) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(tx)
	}
	return s.db.Update(fn)
}

func (s *Store) view(ctx context.Context, fn func(*bolt.Tx) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(tx)
	}
	return s.db.View(fn)
}

type billRepository struct {
	s *Store
}

func (r billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("failed to create bill: empty id")
	}

	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	err := r.s.update(ctx, func(tx *bolt.Tx) error {
		bills := tx.Bucket([]byte(BucketBills))
		if bills.Get([]byte(bill.ID)) != nil {
			return fmt.Errorf("bill %s already exists", bill.ID)
		}

		data, err := json.Marshal(toRecord(bill))
		if err != nil {
			return fmt.Errorf("failed to marshal bill: %w", err)
		}
		if err := bills.Put([]byte(bill.ID), data); err != nil {
			return err
		}

		order := tx.Bucket([]byte(BucketBillOrder))
		seq, err := order.NextSequence()
		if err != nil {
			return err
		}
		return order.Put(itob(seq), []byte(bill.ID))
	})
	if err != nil {
		r.s.logger.Error("Failed to create bill", zap.String("bill_id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (r billRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	var bill *entity.Bill
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketBills)).Get([]byte(id))
		if data == nil {
			return entity.ErrBillNotFound
		}
		var err error
		bill, err = fromJSON(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (r billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	err := r.s.update(ctx, func(tx *bolt.Tx) error {
		bills := tx.Bucket([]byte(BucketBills))
		existing := bills.Get([]byte(bill.ID))
		if existing == nil {
			return entity.ErrBillNotFound
		}

		previous, err := fromJSON(existing)
		if err != nil {
			return err
		}
		bill.CreatedAt = previous.CreatedAt
		bill.UpdatedAt = time.Now()

		data, err := json.Marshal(toRecord(bill))
		if err != nil {
			return fmt.Errorf("failed to marshal bill: %w", err)
		}
		return bills.Put([]byte(bill.ID), data)
	})
	if err != nil && !errors.Is(err, entity.ErrBillNotFound) {
		r.s.logger.Error("Failed to update bill", zap.String("bill_id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return err
}

func (r billRepository) List(ctx context.Context) ([]*entity.Bill, error) {
	bills := []*entity.Bill{}
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		records := tx.Bucket([]byte(BucketBills))
		return tx.Bucket([]byte(BucketBillOrder)).ForEach(func(_, id []byte) error {
			data := records.Get(id)
			if data == nil {
				return nil
			}
			bill, err := fromJSON(data)
			if err != nil {
				return err
			}
			bills = append(bills, bill)
			return nil
		})
	})
	if err != nil {
		r.s.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

type attachmentRepository struct {
	s *Store
}

func (r attachmentRepository) Create(ctx context.Context, attachment *entity.StoredAttachment) error {
	attachment.CreatedAt = time.Now()
	data, err := json.Marshal(attachment)
	if err != nil {
		return fmt.Errorf("failed to marshal attachment: %w", err)
	}

	err = r.s.update(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketAttachments)).Put([]byte(attachment.BillID), data)
	})
	if err != nil {
		r.s.logger.Error("Failed to create attachment", zap.String("bill_id", attachment.BillID), zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

func (r attachmentRepository) GetByBillID(ctx context.Context, billID string) (*entity.StoredAttachment, error) {
	var attachment entity.StoredAttachment
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketAttachments)).Get([]byte(billID))
		if data == nil {
			return entity.ErrBillNotFound
		}
		return json.Unmarshal(data, &attachment)
	})
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// record is the stored form of a bill; entity.Bill hides its timestamps from JSON
type record struct {
	entity.Bill
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRecord(bill *entity.Bill) record {
	return record{Bill: *bill, CreatedAt: bill.CreatedAt, UpdatedAt: bill.UpdatedAt}
}

func fromJSON(data []byte) (*entity.Bill, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bill: %w", err)
	}
	bill := rec.Bill
	bill.CreatedAt = rec.CreatedAt
	bill.UpdatedAt = rec.UpdatedAt
	return &bill, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

var (
	_ port.TransactionManager   = (*Store)(nil)
	_ port.BillRepository       = billRepository{}
	_ port.AttachmentRepository = attachmentRepository{}
)
