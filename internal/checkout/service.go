package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/amglow-storefront/internal/cart"
	"github.com/angelmondragon/amglow-storefront/internal/notify"
	"github.com/angelmondragon/amglow-storefront/internal/orders"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
	"github.com/angelmondragon/amglow-storefront/pkg/metrics"
)

// Service runs one submission per call against the caller's session cart.
type Service interface {
	Checkout(ctx context.Context, sessionID string, form Form, n notify.Notifier, nav Navigator) (*Outcome, error)
}

// Outcome is the result of a successful checkout.
type Outcome struct {
	OrderID string
	Record  orders.Record
	// Form is the form after submission, i.e. reset to defaults.
	Form Form
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Sessions          *cart.Sessions
	Orders            orders.Store
	Guards            GuardFactory
	Collection        string
	ConfirmationRoute string
	Logger            *logger.Logger
	Metrics           *metrics.CheckoutMetrics
	Now               func() time.Time
}

type service struct {
	cfg ServiceConfig
}

func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("cart sessions required")
	}
	if cfg.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Guards == nil {
		local := &LocalGuards{}
		cfg.Guards = local.For
	}
	return &service{cfg: cfg}, nil
}

func (s *service) Checkout(ctx context.Context, sessionID string, form Form, n notify.Notifier, nav Navigator) (*Outcome, error) {
	store, err := s.cfg.Sessions.Open(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}

	submitter, err := NewSubmitter(SubmitterDeps{
		Cart:              store,
		Form:              &form,
		Orders:            s.cfg.Orders,
		Collection:        s.cfg.Collection,
		Guard:             s.cfg.Guards(sessionID),
		Notifier:          n,
		Navigator:         nav,
		ConfirmationRoute: s.cfg.ConfirmationRoute,
		Logger:            s.cfg.Logger,
		Metrics:           s.cfg.Metrics,
		Now:               s.cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	res, err := submitter.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return &Outcome{OrderID: res.OrderID, Record: res.Record, Form: form}, nil
}
