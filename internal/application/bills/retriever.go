// Package bills retrieves the employee's bills and prepares them for the listing.
package bills

import (
	"context"

	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"go.uber.org/zap"
)

// BillView is a bill ready for display. Bill keeps the raw record;
// Date and Status hold the display values.
type BillView struct {
	Bill   entity.Bill `json:"bill"`
	Date   string      `json:"date"`
	Status string      `json:"status"`
}

// Retriever fetches bills from the store and normalises them for display
type Retriever struct {
	gateway   port.StorageGateway
	formatter format.Formatter
	logger    *zap.Logger
}

// RetrieverOption configures a Retriever
type RetrieverOption func(*Retriever)

// WithFormatter replaces the display formatter
func WithFormatter(f format.Formatter) RetrieverOption {
	return func(r *Retriever) {
		r.formatter = f
	}
}

// NewRetriever creates a retriever. gateway may be nil.
func NewRetriever(gateway port.StorageGateway, logger *zap.Logger, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		gateway:   gateway,
		formatter: format.Default(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetBills returns the bills in backend order with display values.
//
// Without a storage gateway it returns (nil, nil). An empty collection is
// returned as a non-nil empty slice. Only a failed List is returned as an
// error, wrapped in *entity.ListError with the backend message unchanged.
func (r *Retriever) GetBills(ctx context.Context) ([]BillView, error) {
	if r.gateway == nil {
		return nil, nil
	}

	records, err := r.gateway.Bills().List(ctx)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, &entity.ListError{Err: err}
	}

	views := make([]BillView, 0, len(records))
	for _, record := range records {
		views = append(views, r.normalize(record))
	}

	r.logger.Debug("Bills retrieved", zap.Int("count", len(views)))
	return views, nil
}

// normalize formats one record. A date that cannot be formatted keeps its raw
// value and is logged; the status is always formatted.
func (r *Retriever) normalize(record entity.Bill) BillView {
	view := BillView{
		Bill:   record,
		Date:   record.Date,
		Status: r.formatter.Status(record.Status),
	}

	date, err := r.formatter.Date(record.Date)
	if err != nil {
		formatErr := &entity.FormatError{
			BillID: record.ID,
			Field:  "date",
			Value:  record.Date,
			Err:    err,
		}
		r.logger.Warn("Corrupted bill data, showing raw value",
			zap.String("bill_id", record.ID),
			zap.Error(formatErr))
		return view
	}

	view.Date = date
	return view
}
