package checkout

import (
	"context"
	"fmt"
	"time"

	"eventify/internal/config"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/notify"
	"eventify/internal/payments/storage"
	"eventify/internal/qr"
	"eventify/internal/wallet"

	"github.com/google/uuid"
)

// Lock acquisition is retried briefly so a success redirect that races a
// duplicate does not fail the user outright.
const (
	lockAttempts = 5
	lockBackoff  = 200 * time.Millisecond
)

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type RSVPStore interface {
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error)
	CreateWithSeat(ctx context.Context, rsvp *models.RSVP) error
	DeletePendingWithRelease(ctx context.Context, userID, eventID string) (bool, error)
	SettlePaid(ctx context.Context, rsvpID string, credits []wallet.Credit) (bool, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PlatformAccountID(ctx context.Context) (string, error)
}

// SettlementLock serializes settlement per checkout session.
type SettlementLock interface {
	Acquire(ctx context.Context, sessionID, owner string) (bool, error)
	Release(ctx context.Context, sessionID, owner string) error
}

type Mailer interface {
	SendPaymentConfirmation(to, name, eventTitle string, amount float64, eventDate string) error
	SendQRCode(to, name, eventTitle, eventDate, eventLocation string, qrImage []byte) error
}

type NotificationSink interface {
	Notify(ctx context.Context, userID, title, message string, notifType models.NotificationType, relatedEventID, relatedUserID string) error
}

type EventPublisher interface {
	PublishPaymentSettled(ctx context.Context, payment models.Payment) error
	PublishRegistrationCancelled(ctx context.Context, rsvp models.RSVP) error
}

// Service drives the paid registration flow: it opens checkout sessions
// against the payment processor, settles confirmed payments into wallet
// credits, and unwinds abandoned checkouts.
type Service struct {
	Events     EventStore
	RSVPs      RSVPStore
	Users      UserStore
	Payments   storage.Store
	Processor  PaymentProcessor
	Lock       SettlementLock
	Dispatcher *notify.Dispatcher
	Mailer     Mailer
	Notifier   NotificationSink
	Publisher  EventPublisher
	Logger     *logger.Logger
	Cfg        *config.Config
}

// StartCheckout reserves a seat under a pending RSVP and opens a payment
// session for it. A pending RSVP left over from an earlier abandoned
// checkout is reused rather than reserving a second seat. If the session
// cannot be opened, a reservation made by this call is rolled back.
func (s *Service) StartCheckout(ctx context.Context, userID, eventID string) (*models.CheckoutSession, error) {
	event, err := s.Events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventApproved {
		return nil, fmt.Errorf("event %s: %w", eventID, models.ErrEventNotApproved)
	}
	if event.Price <= 0 {
		return nil, fmt.Errorf("event %s is free, register directly: %w", eventID, models.ErrValidation)
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rsvp, err := s.RSVPs.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	freshReservation := false
	switch {
	case rsvp == nil:
		rsvp = &models.RSVP{
			ID:            uuid.NewString(),
			UserID:        userID,
			EventID:       eventID,
			PaymentStatus: models.StatusPending,
			CreatedAt:     time.Now(),
		}
		if err := s.RSVPs.CreateWithSeat(ctx, rsvp); err != nil {
			return nil, err
		}
		freshReservation = true
	case rsvp.PaymentStatus == models.StatusPaid:
		return nil, fmt.Errorf("event %s: %w", eventID, models.ErrAlreadyRegistered)
	default:
		// Pending RSVP already holds a seat; open a new session for it.
		s.Logger.Info("CHECKOUT", fmt.Sprintf("Reusing pending rsvp %s for user %s", rsvp.ID, userID))
	}

	session, err := s.Processor.CreateSession(ctx, models.CheckoutSessionRequest{
		Amount:        event.Price,
		Currency:      s.Cfg.Stripe.Currency,
		ProductName:   event.Title,
		CustomerEmail: user.Email,
		SuccessURL:    s.Cfg.Server.BaseURL + "/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}&eventId=" + eventID,
		CancelURL:     s.Cfg.Server.BaseURL + "/api/v1/payments/cancel?eventId=" + eventID,
		EventID:       eventID,
		UserID:        userID,
		RSVPID:        rsvp.ID,
	})
	if err != nil {
		s.compensate(ctx, freshReservation, userID, eventID)
		return nil, fmt.Errorf("%w: %v", models.ErrCheckoutUnavailable, err)
	}

	now := time.Now()
	payment := &models.Payment{
		ID:              uuid.NewString(),
		UserID:          userID,
		EventID:         eventID,
		RSVPID:          rsvp.ID,
		Amount:          event.Price,
		Currency:        s.Cfg.Stripe.Currency,
		StripeSessionID: session.SessionID,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Payments.SavePayment(ctx, payment); err != nil {
		// Without a local record the session could never settle.
		s.compensate(ctx, freshReservation, userID, eventID)
		return nil, fmt.Errorf("%w: %v", models.ErrCheckoutUnavailable, err)
	}

	s.Logger.LogPayment("CHECKOUT_STARTED", session.SessionID,
		fmt.Sprintf("user %s event %s rsvp %s", userID, eventID, rsvp.ID))
	return session, nil
}

func (s *Service) compensate(ctx context.Context, freshReservation bool, userID, eventID string) {
	if !freshReservation {
		return
	}
	if _, err := s.RSVPs.DeletePendingWithRelease(ctx, userID, eventID); err != nil {
		s.Logger.Error("CHECKOUT", fmt.Sprintf("Failed to roll back reservation for user %s event %s: %v", userID, eventID, err))
	}
}

// ConfirmPayment settles a checkout session. It verifies with the
// processor that the session was actually paid, transitions the RSVP to
// paid, and splits the ticket price between the organizer's wallet and
// the platform account in the same transaction. Safe to call any number
// of times per session: exactly one call performs the credit.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID string) (*models.Payment, error) {
	owner := uuid.NewString()
	acquired := false
	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := s.Lock.Acquire(ctx, sessionID, owner)
		if err != nil {
			return nil, fmt.Errorf("acquire settlement lock: %w", err)
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	if !acquired {
		return nil, fmt.Errorf("settlement for session %s already in progress", sessionID)
	}
	defer func() {
		if err := s.Lock.Release(ctx, sessionID, owner); err != nil {
			s.Logger.Warn("CHECKOUT", fmt.Sprintf("Failed to release settlement lock for %s: %v", sessionID, err))
		}
	}()

	session, err := s.Processor.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.PaymentCompleted {
		return nil, fmt.Errorf("session %s: %w", sessionID, models.ErrPaymentNotCompleted)
	}

	payment, err := s.Payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.StatusPaid {
		s.Logger.LogPayment("ALREADY_SETTLED", sessionID, "duplicate confirmation ignored")
		return payment, nil
	}

	event, err := s.Events.GetEvent(ctx, payment.EventID)
	if err != nil {
		return nil, err
	}

	credits := s.revenueSplit(ctx, event)

	transitioned, err := s.RSVPs.SettlePaid(ctx, payment.RSVPID, credits)
	if err != nil {
		return nil, fmt.Errorf("settle rsvp %s: %w", payment.RSVPID, err)
	}

	if _, err := s.Payments.MarkPaid(ctx, sessionID); err != nil {
		// The RSVP transition already committed; the payment row catches
		// up on the next confirmation attempt.
		s.Logger.Warn("CHECKOUT", fmt.Sprintf("Failed to record payment %s as paid: %v", payment.ID, err))
	} else {
		payment.Status = models.StatusPaid
	}

	if transitioned {
		s.Logger.LogPayment("SETTLED", sessionID,
			fmt.Sprintf("rsvp %s amount %.2f %s", payment.RSVPID, payment.Amount, payment.Currency))
		s.Dispatcher.Dispatch(ctx, s.settlementEffects(payment, event)...)
	}
	return payment, nil
}

// revenueSplit builds the wallet credits for a settled ticket from the
// event's current price. The platform share is skipped with a warning
// when no admin account exists; the organizer is always credited.
func (s *Service) revenueSplit(ctx context.Context, event *models.Event) []wallet.Credit {
	credits := []wallet.Credit{
		{UserID: event.CreatedBy, Amount: event.Price * s.Cfg.Platform.OrganizerShare},
	}
	platformID, err := s.Users.PlatformAccountID(ctx)
	if err != nil {
		s.Logger.Warn("CHECKOUT", fmt.Sprintf("No platform account for revenue share: %v", err))
		return credits
	}
	return append(credits, wallet.Credit{
		UserID: platformID,
		Amount: event.Price * s.Cfg.Platform.PlatformShare,
	})
}

func (s *Service) settlementEffects(payment *models.Payment, event *models.Event) []notify.Effect {
	effects := []notify.Effect{
		{
			Name: "payment confirmation email",
			Run: func(ctx context.Context) error {
				user, err := s.Users.GetUser(ctx, payment.UserID)
				if err != nil {
					return err
				}
				return s.Mailer.SendPaymentConfirmation(user.Email, user.Name, event.Title, payment.Amount, event.Date)
			},
		},
		{
			Name: "ticket qr email",
			Run: func(ctx context.Context) error {
				user, err := s.Users.GetUser(ctx, payment.UserID)
				if err != nil {
					return err
				}
				png, err := qr.Generate(qr.Payload{
					RSVPID:     payment.RSVPID,
					UserID:     payment.UserID,
					EventID:    event.ID,
					EventTitle: event.Title,
				})
				if err != nil {
					return err
				}
				return s.Mailer.SendQRCode(user.Email, user.Name, event.Title, event.Date, event.Location, png)
			},
		},
		{
			Name: "attendee notification",
			Run: func(ctx context.Context) error {
				return s.Notifier.Notify(ctx, payment.UserID,
					"Payment confirmed",
					fmt.Sprintf("Your ticket for %s is confirmed.", event.Title),
					models.NotifPayment, event.ID, "")
			},
		},
		{
			Name: "organizer notification",
			Run: func(ctx context.Context) error {
				return s.Notifier.Notify(ctx, event.CreatedBy,
					"New paid registration",
					fmt.Sprintf("A ticket for %s was purchased.", event.Title),
					models.NotifRegistration, event.ID, payment.UserID)
			},
		},
	}
	if s.Publisher != nil {
		effects = append(effects, notify.Effect{
			Name: "payment settled publish",
			Run: func(ctx context.Context) error {
				return s.Publisher.PublishPaymentSettled(ctx, *payment)
			},
		})
	}
	return effects
}

// CancelCheckout handles the user backing out of a payment session. The
// pending RSVP is removed and its seat returned; a paid or absent RSVP
// is left alone, so a cancel that arrives after settlement changes
// nothing. The pending payment row stays behind for reconciliation.
func (s *Service) CancelCheckout(ctx context.Context, userID, eventID string) (bool, error) {
	rsvp, err := s.RSVPs.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return false, err
	}
	if rsvp == nil {
		return false, nil
	}

	removed, err := s.RSVPs.DeletePendingWithRelease(ctx, userID, eventID)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	s.Logger.LogPayment("CHECKOUT_CANCELLED", "-",
		fmt.Sprintf("user %s event %s rsvp %s", userID, eventID, rsvp.ID))
	if s.Publisher != nil {
		s.Dispatcher.Dispatch(ctx, notify.Effect{
			Name: "registration cancelled publish",
			Run: func(ctx context.Context) error {
				return s.Publisher.PublishRegistrationCancelled(ctx, *rsvp)
			},
		})
	}
	return true, nil
}
