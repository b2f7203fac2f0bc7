package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"eventify/internal/config"
	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
	ErrStripeAPIError         = errors.New("stripe API error")
)

// PaymentProcessor abstracts the external payment provider: one call to
// open a session, one to check whether it was paid.
type PaymentProcessor interface {
	CreateSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

// StripeProcessor implements PaymentProcessor on Stripe Checkout
// sessions. Every API call runs under the configured timeout so a slow
// provider fails the operation instead of hanging it.
type StripeProcessor struct {
	client *client.API
	cfg    config.StripeConfig
	log    *logger.Logger
}

func NewStripeProcessor(cfg config.StripeConfig, log *logger.Logger) (*StripeProcessor, error) {
	if cfg.SecretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(cfg.SecretKey, nil)
	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeProcessor{client: sc, cfg: cfg, log: log}, nil
}

func (s *StripeProcessor) CreateSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					// Stripe amounts are in the smallest currency unit.
					UnitAmount: stripe.Int64(int64(math.Round(req.Amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("event_id", req.EventID)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("rsvp_id", req.RSVPID)

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.LogPayment("SESSION_CREATED", sess.ID, fmt.Sprintf("%.2f %s for rsvp %s", req.Amount, req.Currency, req.RSVPID))
	return &models.CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

func (s *StripeProcessor) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to retrieve checkout session %s: %v", sessionID, err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	return &models.CheckoutSession{
		SessionID:        sess.ID,
		URL:              sess.URL,
		PaymentCompleted: sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
