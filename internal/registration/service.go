package registration

import (
	"context"
	"fmt"
	"time"

	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/notify"
	"eventify/internal/wallet"

	"github.com/google/uuid"
)

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type RSVPStore interface {
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error)
	ListByUser(ctx context.Context, userID string) ([]models.RSVP, error)
	CreateWithSeat(ctx context.Context, rsvp *models.RSVP) error
	DeletePendingWithRelease(ctx context.Context, userID, eventID string) (bool, error)
	SettlePaid(ctx context.Context, rsvpID string, credits []wallet.Credit) (bool, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type Mailer interface {
	SendRegistrationConfirmation(to, name, eventTitle string) error
}

type NotificationSink interface {
	Notify(ctx context.Context, userID, title, message string, notifType models.NotificationType, relatedEventID, relatedUserID string) error
}

type EventPublisher interface {
	PublishRegistrationConfirmed(ctx context.Context, rsvp models.RSVP) error
	PublishRegistrationCancelled(ctx context.Context, rsvp models.RSVP) error
}

// Service handles direct registration. Free events register in one step;
// paid events are redirected to checkout.
type Service struct {
	Events     EventStore
	RSVPs      RSVPStore
	Users      UserStore
	Dispatcher *notify.Dispatcher
	Mailer     Mailer
	Notifier   NotificationSink
	Publisher  EventPublisher
	Logger     *logger.Logger
}

// Register books a seat for the user. Only approved events accept
// registrations, and a user holds at most one RSVP per event. For a paid
// event no state changes here; the caller must start a checkout instead.
func (s *Service) Register(ctx context.Context, userID, eventID string) (*models.RSVP, error) {
	event, err := s.Events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventApproved {
		return nil, fmt.Errorf("event %s: %w", eventID, models.ErrEventNotApproved)
	}

	existing, err := s.RSVPs.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.PaymentStatus == models.StatusPaid {
			return nil, fmt.Errorf("event %s: %w", eventID, models.ErrAlreadyRegistered)
		}
		return nil, fmt.Errorf("event %s: %w", eventID, models.ErrRegistrationPending)
	}

	if event.Price > 0 {
		return nil, fmt.Errorf("event %s costs %.2f: %w", eventID, event.Price, models.ErrPaymentRequired)
	}

	rsvp := &models.RSVP{
		ID:            uuid.NewString(),
		UserID:        userID,
		EventID:       eventID,
		PaymentStatus: models.StatusPaid,
		CreatedAt:     time.Now(),
	}
	if err := s.RSVPs.CreateWithSeat(ctx, rsvp); err != nil {
		return nil, err
	}

	s.Logger.Info("REGISTRATION", fmt.Sprintf("User %s registered for free event %s (rsvp %s)", userID, eventID, rsvp.ID))
	s.Dispatcher.Dispatch(ctx, s.confirmationEffects(rsvp, event)...)
	return rsvp, nil
}

func (s *Service) confirmationEffects(rsvp *models.RSVP, event *models.Event) []notify.Effect {
	effects := []notify.Effect{
		{
			Name: "registration confirmation email",
			Run: func(ctx context.Context) error {
				user, err := s.Users.GetUser(ctx, rsvp.UserID)
				if err != nil {
					return err
				}
				return s.Mailer.SendRegistrationConfirmation(user.Email, user.Name, event.Title)
			},
		},
		{
			Name: "attendee notification",
			Run: func(ctx context.Context) error {
				return s.Notifier.Notify(ctx, rsvp.UserID,
					"Registration confirmed",
					fmt.Sprintf("You are registered for %s.", event.Title),
					models.NotifRegistration, event.ID, "")
			},
		},
		{
			Name: "organizer notification",
			Run: func(ctx context.Context) error {
				return s.Notifier.Notify(ctx, event.CreatedBy,
					"New registration",
					fmt.Sprintf("Someone registered for %s.", event.Title),
					models.NotifRegistration, event.ID, rsvp.UserID)
			},
		},
	}
	if s.Publisher != nil {
		effects = append(effects, notify.Effect{
			Name: "registration confirmed publish",
			Run: func(ctx context.Context) error {
				return s.Publisher.PublishRegistrationConfirmed(ctx, *rsvp)
			},
		})
	}
	return effects
}

// CancelPending abandons an unpaid registration and returns its seat.
// Reports whether anything was cancelled; paid RSVPs are not touched.
func (s *Service) CancelPending(ctx context.Context, userID, eventID string) (bool, error) {
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

	s.Logger.Info("REGISTRATION", fmt.Sprintf("User %s cancelled pending registration for event %s", userID, eventID))
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

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.RSVP, error) {
	return s.RSVPs.ListByUser(ctx, userID)
}
