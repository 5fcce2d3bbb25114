// Package newbill drives the new expense report form: proof validation,
// proof upload, and submission of the completed bill.
package newbill

import (
	"context"
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NavigationPolicy decides when a submission navigates to the listing
type NavigationPolicy int

const (
	// NavigateOptimistic navigates as soon as the update call is issued,
	// whatever its outcome. Update failures are only logged.
	NavigateOptimistic NavigationPolicy = iota

	// NavigateAfterPersist waits for the update and navigates only when it succeeds
	NavigateAfterPersist
)

func (p NavigationPolicy) String() string {
	switch p {
	case NavigateOptimistic:
		return "optimistic"
	case NavigateAfterPersist:
		return "after_persist"
	default:
		return "unknown"
	}
}

// Form holds the raw values of the new bill form
type Form struct {
	Type       string `json:"type" form:"type"`
	Name       string `json:"name" form:"name"`
	Date       string `json:"date" form:"date"`
	Amount     string `json:"amount" form:"amount"`
	VAT        string `json:"vat" form:"vat"`
	Pct        string `json:"pct" form:"pct"`
	Commentary string `json:"commentary" form:"commentary"`
}

// Handles are the optional form controls the controller drives
type Handles struct {
	FileInput    port.FileInput
	ErrorMessage port.MessageDisplay
	Navigator    port.Navigator
}

// SubmitResult reports the two independent outcomes of a submission:
// whether the client navigated, and how persistence settled.
type SubmitResult struct {
	// State is DONE once navigation happened, BLOCKED when the proof was
	// missing, and FAILED when NavigateAfterPersist saw the update fail.
	State     workflow.State
	Path      []workflow.State
	Navigated bool
	Bill      *entity.Bill

	// Reason is set when the attempt was blocked
	Reason error

	// Persisted receives the update outcome once (nil on success), then closes.
	// It is nil when no update was issued.
	Persisted <-chan error
}

// Option configures a Controller
type Option func(*Controller)

// WithNavigationPolicy overrides the default optimistic navigation
func WithNavigationPolicy(policy NavigationPolicy) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// Controller orchestrates the new bill form
type Controller struct {
	gateway   port.StorageGateway
	validator *FileValidator
	uploads   *UploadCoordinator
	navigator port.Navigator
	policy    NavigationPolicy
	logger    *zap.Logger
}

// NewController creates a controller. gateway and every handle may be nil.
func NewController(gateway port.StorageGateway, handles Handles, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		gateway:   gateway,
		validator: NewFileValidator(handles.FileInput, handles.ErrorMessage, logger),
		uploads:   NewUploadCoordinator(gateway, logger),
		navigator: handles.Navigator,
		policy:    NavigateOptimistic,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the navigation policy in effect
func (c *Controller) Policy() NavigationPolicy {
	return c.policy
}

// Attachment returns the upload-derived fields currently recorded
func (c *Controller) Attachment() Attachment {
	return c.uploads.Attachment()
}

// ChangeFile handles a new proof selection. A rejected file returns a
// *entity.ValidationError and starts nothing; an accepted one starts the
// upload and returns the channel its outcome will be delivered on.
func (c *Controller) ChangeFile(ctx context.Context, sess port.SessionStore, file entity.AttachmentFile) (<-chan UploadOutcome, error) {
	if err := c.validator.Validate(file.Name); err != nil {
		return nil, err
	}
	return c.uploads.Start(ctx, sess, file), nil
}

// Submit runs one submission attempt for form on behalf of the session user
func (c *Controller) Submit(ctx context.Context, sess port.SessionStore, form Form) *SubmitResult {
	attachment := c.uploads.Attachment()

	var reason error
	var user *entity.User
	switch {
	case !attachment.Complete():
		reason = entity.ErrAttachmentMissing
	case c.gateway == nil:
		reason = entity.ErrNoStore
	default:
		user, reason = session.CurrentUser(sess)
	}

	machine := workflow.NewSubmissionBuilder(func(context.Context) bool {
		return reason == nil
	}).Build(workflow.StateEditing)

	result := &SubmitResult{}
	c.fire(ctx, machine, workflow.TriggerSubmit)

	if err := machine.Fire(ctx, workflow.TriggerPersist); err != nil {
		c.fire(ctx, machine, workflow.TriggerBlock)
		c.logger.Info("Bill submission blocked", zap.Error(reason))
		result.Reason = reason
		return c.finish(result, machine)
	}

	bill := c.buildBill(form, user.Email, attachment)
	result.Bill = bill
	persisted := c.persist(ctx, bill)

	switch c.policy {
	case NavigateAfterPersist:
		err := <-persisted
		done := make(chan error, 1)
		done <- err
		close(done)
		result.Persisted = done
		if err != nil {
			c.fire(ctx, machine, workflow.TriggerFail)
			return c.finish(result, machine)
		}
	default:
		result.Persisted = persisted
	}

	result.Navigated = c.navigate(entity.RouteBills)
	c.fire(ctx, machine, workflow.TriggerNavigate)
	return c.finish(result, machine)
}

// persist issues the update on its own goroutine, detached from ctx cancellation
func (c *Controller) persist(ctx context.Context, bill *entity.Bill) <-chan error {
	out := make(chan error, 1)
	store := c.gateway.Bills()
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(out)
		if err := store.Update(ctx, bill); err != nil {
			submitErr := &entity.SubmitError{BillID: bill.ID, Err: err}
			c.logger.Error("Failed to update bill",
				zap.String("bill_id", bill.ID),
				zap.Error(err))
			out <- submitErr
			return
		}
		c.logger.Info("Bill submitted", zap.String("bill_id", bill.ID))
		out <- nil
	}()

	return out
}

func (c *Controller) navigate(route string) bool {
	if c.navigator == nil {
		return false
	}
	c.navigator.Navigate(route)
	return true
}

func (c *Controller) fire(ctx context.Context, machine workflow.StateMachine, trigger workflow.Trigger) {
	if err := machine.Fire(ctx, trigger); err != nil {
		c.logger.Warn("Unexpected submission transition",
			zap.String("trigger", trigger.String()),
			zap.Error(err))
	}
}

func (c *Controller) finish(result *SubmitResult, machine workflow.StateMachine) *SubmitResult {
	result.State = machine.State()
	result.Path = machine.Path()
	return result
}

func (c *Controller) buildBill(form Form, email string, attachment Attachment) *entity.Bill {
	return &entity.Bill{
		ID:         attachment.BillID,
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     c.parseAmount(form.Amount),
		Date:       form.Date,
		VAT:        form.VAT,
		Pct:        parsePct(form.Pct),
		Commentary: form.Commentary,
		FileURL:    entity.StringPtr(attachment.FileURL),
		FileName:   entity.StringPtr(attachment.FileName),
		Status:     entity.StatusPending,
	}
}

func (c *Controller) parseAmount(raw string) float64 {
	amount, err := parseDecimal(raw)
	if err != nil {
		c.logger.Warn("Invalid amount, storing 0", zap.String("amount", raw), zap.Error(err))
		return 0
	}
	return amount.InexactFloat64()
}

// parsePct returns the integer part of raw, or entity.DefaultPct when it is
// empty, invalid, or zero
func parsePct(raw string) int {
	pct, err := parseDecimal(raw)
	if err != nil || pct.IntPart() == 0 {
		return entity.DefaultPct
	}
	return int(pct.IntPart())
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return decimal.NewFromString(value)
}
