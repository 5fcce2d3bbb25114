package bills

import (
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/garyjia/billed/internal/application/format"
	"github.com/garyjia/billed/internal/application/newbill"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"go.uber.org/zap"
)

// PresenterHandles are the optional listing controls
type PresenterHandles struct {
	NewBillButton port.Clickable
	Navigator     port.Navigator
	Preview       port.PreviewSurface
}

// Preview describes the proof shown for one row
type Preview struct {
	BillID string
	// FileURL is empty when the bill has no proof URL
	FileURL string
	Broken  bool
}

// Presenter orders bills for display and handles row interactions
type Presenter struct {
	rows      []BillView
	navigator port.Navigator
	surface   port.PreviewSurface
	logger    *zap.Logger

	mu      sync.Mutex
	current *Preview
}

// NewPresenter sorts views newest first and binds the new-bill control when
// present. Any handle may be nil.
func NewPresenter(views []BillView, handles PresenterHandles, logger *zap.Logger) *Presenter {
	p := &Presenter{
		rows:      SortNewestFirst(views),
		navigator: handles.Navigator,
		surface:   handles.Preview,
		logger:    logger,
	}

	if handles.NewBillButton != nil {
		handles.NewBillButton.OnClick(func() {
			p.NewBill()
		})
	}

	return p
}

// SortNewestFirst returns a copy of views ordered by descending raw date.
// Ties keep their input order and unparseable dates go last.
func SortNewestFirst(views []BillView) []BillView {
	sorted := slices.Clone(views)
	slices.SortStableFunc(sorted, func(a, b BillView) int {
		ta, errA := format.ParseDate(a.Bill.Date)
		tb, errB := format.ParseDate(b.Bill.Date)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return tb.Compare(ta)
	})
	return sorted
}

// Rows returns the rows in display order
func (p *Presenter) Rows() []BillView {
	return slices.Clone(p.rows)
}

// Len returns the number of rows, which is also the number of preview triggers
func (p *Presenter) Len() int {
	return len(p.rows)
}

// NewBill navigates to the new bill form. It reports false when no navigator is bound.
func (p *Presenter) NewBill() bool {
	if p.navigator == nil {
		return false
	}
	p.navigator.Navigate(entity.RouteNewBill)
	return true
}

// OpenPreview opens the proof of the row at index. A missing or invalid
// proof URL opens the preview in its broken state.
func (p *Presenter) OpenPreview(index int) (*Preview, error) {
	if index < 0 || index >= len(p.rows) {
		return nil, fmt.Errorf("preview index %d out of range [0,%d)", index, len(p.rows))
	}

	bill := p.rows[index].Bill
	preview := &Preview{BillID: bill.ID, Broken: !ValidProofURL(bill.FileURL)}
	if bill.FileURL != nil {
		preview.FileURL = *bill.FileURL
	}
	if preview.Broken {
		p.logger.Debug("Opening preview without a usable proof", zap.String("bill_id", bill.ID))
	}

	p.mu.Lock()
	p.current = preview
	p.mu.Unlock()

	if p.surface != nil {
		p.surface.Open(preview.FileURL, preview.Broken)
	}
	return preview, nil
}

// Current returns the open preview, or nil
func (p *Presenter) Current() *Preview {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Dismiss closes the open preview. It is a no-op when nothing is open.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	open := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if open && p.surface != nil {
		p.surface.Close()
	}
}

// ValidProofURL reports whether raw points at an image with an accepted extension
func ValidProofURL(raw *string) bool {
	if raw == nil || *raw == "" {
		return false
	}

	u, err := url.Parse(*raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return false
		}
	case "":
		if len(u.Path) == 0 || u.Path[0] != '/' {
			return false
		}
	default:
		return false
	}

	return slices.Contains(entity.AllowedExtensions, newbill.Extension(u.Path))
}
