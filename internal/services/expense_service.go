package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/ports"
)

// ErrorPolicy decides what callers see when storage fails.
type ErrorPolicy string

const (
	// SwallowErrors logs storage failures and reports success to the caller.
	SwallowErrors ErrorPolicy = "swallow"
	// SurfaceErrors logs storage failures and returns them.
	SurfaceErrors ErrorPolicy = "surface"
)

// IsValid returns true if the policy is known
func (p ErrorPolicy) IsValid() bool {
	return p == SwallowErrors || p == SurfaceErrors
}

// EventPublisher announces expense changes.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService is the storage gateway used by the UI. Every storage error
// is logged here; whether it reaches the caller depends on the policy.
type ExpenseService struct {
	store     ports.ExpenseStore
	publisher EventPublisher
	policy    ErrorPolicy
	logger    *applog.Logger
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithPublisher publishes a change event after each successful mutation.
func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithErrorPolicy overrides the default SwallowErrors policy.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(s *ExpenseService) {
		if p.IsValid() {
			s.policy = p
		}
	}
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentStorage)
		}
	}
}

func NewExpenseService(store ports.ExpenseStore, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:  store,
		policy: SwallowErrors,
		logger: applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentStorage}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active error policy.
func (s *ExpenseService) Policy() ErrorPolicy {
	return s.policy
}

// EnsureSchema creates the expense table if absent.
func (s *ExpenseService) EnsureSchema(ctx context.Context) error {
	if err := s.storeOrErr(); err != nil {
		return s.fail(ctx, applog.OpEnsureSchema, err, applog.NewFields())
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return s.fail(ctx, applog.OpEnsureSchema, err, applog.NewFields())
	}
	return nil
}

// Add stores e and returns its id. Under SwallowErrors a failed insert
// returns id 0 and a nil error.
func (s *ExpenseService) Add(ctx context.Context, e core.NewExpense) (core.ExpenseID, error) {
	fields := applog.NewFields().WithExpense(e.Description, e.Amount, e.Date)
	if err := s.storeOrErr(); err != nil {
		return 0, s.fail(ctx, applog.OpInsert, err, fields)
	}
	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return 0, s.fail(ctx, applog.OpInsert, err, fields)
	}

	s.publish(ctx, amqp.EventExpenseCreated, id)
	return id, nil
}

// Delete removes the expense with id. An absent id is not an error.
func (s *ExpenseService) Delete(ctx context.Context, id core.ExpenseID) error {
	fields := applog.NewFields().WithExpenseID(int64(id))
	if err := s.storeOrErr(); err != nil {
		return s.fail(ctx, applog.OpDelete, err, fields)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(ctx, applog.OpDelete, err, fields)
	}

	s.publish(ctx, amqp.EventExpenseDeleted, id)
	return nil
}

// List returns every stored expense. On failure the result is empty.
func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	if err := s.storeOrErr(); err != nil {
		return []core.Expense{}, s.fail(ctx, applog.OpList, err, applog.NewFields())
	}
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return []core.Expense{}, s.fail(ctx, applog.OpList, err, applog.NewFields())
	}
	if items == nil {
		items = []core.Expense{}
	}
	return items, nil
}

func (s *ExpenseService) storeOrErr() error {
	if s.store == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// fail logs err and applies the policy.
func (s *ExpenseService) fail(ctx context.Context, op string, err error, fields applog.LogFields) error {
	s.logger.ErrorContext(ctx, "Storage operation failed",
		fields.WithError(err).WithOperation(op).ToSlice()...)
	if s.policy == SurfaceErrors {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, t amqp.EventType, id core.ExpenseID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(t, id)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.NewFields().
				WithError(err).
				WithOperation(applog.OpPublish).
				WithExpenseID(int64(id)).
				ToSlice()...)
	}
}

// Close closes the underlying store.
func (s *ExpenseService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}
	return nil
}
