// Package checkout turns a session cart and a customer form into exactly one
// order record.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/notify"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/amglow-storefront/pkg/errors"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	"github.com/angelmondragon/amglow-storefront/pkg/metrics"
)

// DefaultConfirmationRoute is where a successful submission navigates.
const DefaultConfirmationRoute = "/order-confirmation"

const (
	msgEmptyCart   = "Your cart is empty"
	msgOrderPlaced = "Order placed successfully!"
	msgOrderFailed = "Failed to place order. Please try again."
)

// State is the phase of a single submission attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateWriting    State = "writing"
	StateWritten    State = "written"
	StateFailed     State = "failed"
)

// ErrEmptyCart is returned when submitting with no lines.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")

// ErrSubmissionInFlight is returned while another submission holds the guard.
var ErrSubmissionInFlight = pkgerrors.New(pkgerrors.CodeConflict, "order submission already in progress")

// SubmitterDeps wires a Submitter. Cart, Form, Orders, Navigator and Logger
// are required.
type SubmitterDeps struct {
	Cart              *cart.Store
	Form              *Form
	Orders            orders.Store
	Collection        string
	Guard             Guard
	Notifier          notify.Notifier
	Navigator         Navigator
	ConfirmationRoute string
	Logger            *logger.Logger
	Metrics           *metrics.CheckoutMetrics
	Now               func() time.Time
}

// Result describes a written order.
type Result struct {
	OrderID string
	Record  orders.Record
}

// Submitter runs the idle → validating → (rejected | writing) →
// (written | failed) → idle cycle against one cart and one form.
type Submitter struct {
	cart         *cart.Store
	form         *Form
	orders       orders.Store
	collection   string
	guard        Guard
	notifier     notify.Notifier
	nav          Navigator
	confirmRoute string
	logg         *logger.Logger
	metrics      *metrics.CheckoutMetrics
	now          func() time.Time

	mu    sync.Mutex
	state State
}

func NewSubmitter(deps SubmitterDeps) (*Submitter, error) {
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if deps.Form == nil {
		return nil, fmt.Errorf("form required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if deps.Navigator == nil {
		return nil, fmt.Errorf("navigator required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &Submitter{
		cart:         deps.Cart,
		form:         deps.Form,
		orders:       deps.Orders,
		collection:   deps.Collection,
		guard:        deps.Guard,
		notifier:     deps.Notifier,
		nav:          deps.Navigator,
		confirmRoute: deps.ConfirmationRoute,
		logg:         deps.Logger,
		metrics:      deps.Metrics,
		now:          deps.Now,
		state:        StateIdle,
	}
	if s.collection == "" {
		s.collection = orders.DefaultCollection
	}
	if s.guard == nil {
		s.guard = &LocalGuard{}
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.confirmRoute == "" {
		s.confirmRoute = DefaultConfirmationRoute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// State reports the current phase.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submitter) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit places one order from the current cart and form.
//
// An empty cart is rejected before any write. A failed write leaves the cart
// and form untouched. On success the cart is cleared, the form reset and the
// navigator sent to the confirmation route once. The guard is released on
// every path.
func (s *Submitter) Submit(ctx context.Context) (*Result, error) {
	acquired, err := s.guard.TryAcquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout guard")
	}
	if !acquired {
		s.metrics.IncOutcome(metrics.OutcomeBusy)
		return nil, ErrSubmissionInFlight
	}
	defer s.release(ctx)
	defer s.setState(StateIdle)

	s.setState(StateValidating)
	// Another request may have changed the stored cart before the guard was taken.
	if err := s.cart.Refresh(ctx); err != nil {
		s.setState(StateFailed)
		s.logg.Error(ctx, "reload cart before checkout", err)
		s.notifier.Notify(ctx, notify.Error(msgOrderFailed, notify.LongAutoClose))
		s.metrics.IncOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		s.setState(StateRejected)
		s.notifier.Notify(ctx, notify.Error(msgEmptyCart, notify.LongAutoClose))
		s.metrics.IncOutcome(metrics.OutcomeRejected)
		return nil, ErrEmptyCart
	}

	rec := BuildRecord(snapshot, *s.form, s.now())

	s.setState(StateWriting)
	started := time.Now()
	id, err := s.orders.Insert(ctx, s.collection, rec)
	s.metrics.ObserveWrite(time.Since(started))
	if err != nil {
		s.setState(StateFailed)
		s.logFailure(ctx, rec, err)
		s.notifier.Notify(ctx, notify.Error(msgOrderFailed, notify.LongAutoClose))
		s.metrics.IncOutcome(metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.setState(StateWritten)
	ctx = s.logg.WithField(ctx, "order_id", id)
	if err := s.cart.ClearCart(ctx); err != nil {
		s.logg.Error(ctx, "order written but cart could not be cleared", err)
	}
	s.notifier.Notify(ctx, notify.Success(msgOrderPlaced, notify.LongAutoClose))
	s.form.Reset()
	s.nav.GoTo(s.confirmRoute)
	s.metrics.IncOutcome(metrics.OutcomeWritten)
	s.logg.Info(ctx, "order placed")

	return &Result{OrderID: id, Record: rec}, nil
}

func (s *Submitter) release(ctx context.Context) {
	if err := s.guard.Release(context.WithoutCancel(ctx)); err != nil {
		s.logg.Error(ctx, "release checkout guard", err)
	}
}

func (s *Submitter) logFailure(ctx context.Context, rec orders.Record, err error) {
	fields := pkgerrors.Dump(err).Fields()
	fields["collection"] = s.collection
	fields["item_count"] = len(rec.Items)
	fields["order_total"] = rec.Total.StringFixed(2)
	s.logg.Error(s.logg.WithFields(ctx, fields), "order write failed", err)
}
