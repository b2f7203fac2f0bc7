package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventify/internal/config"
	"eventify/internal/logger"
	"eventify/internal/models"
	"eventify/internal/notify"
	"eventify/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockRSVPStore struct {
	mock.Mock
}

func (m *MockRSVPStore) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.RSVP, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RSVP), args.Error(1)
}

func (m *MockRSVPStore) CreateWithSeat(ctx context.Context, rsvp *models.RSVP) error {
	args := m.Called(ctx, rsvp)
	return args.Error(0)
}

func (m *MockRSVPStore) DeletePendingWithRelease(ctx context.Context, userID, eventID string) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRSVPStore) SettlePaid(ctx context.Context, rsvpID string, credits []wallet.Credit) (bool, error) {
	args := m.Called(ctx, rsvpID, credits)
	return args.Bool(0), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) PlatformAccountID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) SavePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentStore) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) MarkPaid(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentStore) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) ListStalePayments(ctx context.Context, olderThan time.Time) ([]*models.Payment, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSession), args.Error(1)
}

func (m *MockProcessor) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSession), args.Error(1)
}

type MockLock struct {
	mock.Mock
}

func (m *MockLock) Acquire(ctx context.Context, sessionID, owner string) (bool, error) {
	args := m.Called(ctx, sessionID, owner)
	return args.Bool(0), args.Error(1)
}

func (m *MockLock) Release(ctx context.Context, sessionID, owner string) error {
	args := m.Called(ctx, sessionID, owner)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPaymentConfirmation(to, name, eventTitle string, amount float64, eventDate string) error {
	args := m.Called(to, name, eventTitle, amount, eventDate)
	return args.Error(0)
}

func (m *MockMailer) SendQRCode(to, name, eventTitle, eventDate, eventLocation string, qrImage []byte) error {
	args := m.Called(to, name, eventTitle, eventDate, eventLocation, qrImage)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID, title, message string, notifType models.NotificationType, relatedEventID, relatedUserID string) error {
	args := m.Called(ctx, userID, title, message, notifType, relatedEventID, relatedUserID)
	return args.Error(0)
}

// Fixtures

type serviceMocks struct {
	Events    *MockEventStore
	RSVPs     *MockRSVPStore
	Users     *MockUserStore
	Payments  *MockPaymentStore
	Processor *MockProcessor
	Lock      *MockLock
	Mailer    *MockMailer
	Notifier  *MockNotifier
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	t.Helper()
	log := logger.NewLogger()
	t.Cleanup(log.Close)

	m := &serviceMocks{
		Events:    new(MockEventStore),
		RSVPs:     new(MockRSVPStore),
		Users:     new(MockUserStore),
		Payments:  new(MockPaymentStore),
		Processor: new(MockProcessor),
		Lock:      new(MockLock),
		Mailer:    new(MockMailer),
		Notifier:  new(MockNotifier),
	}

	cfg := config.Load()
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Stripe.Currency = "usd"

	svc := &Service{
		Events:     m.Events,
		RSVPs:      m.RSVPs,
		Users:      m.Users,
		Payments:   m.Payments,
		Processor:  m.Processor,
		Lock:       m.Lock,
		Dispatcher: notify.NewDispatcher(log),
		Mailer:     m.Mailer,
		Notifier:   m.Notifier,
		Logger:     log,
		Cfg:        cfg,
	}
	return svc, m
}

func approvedEvent() *models.Event {
	return &models.Event{
		ID:             "event-1",
		Title:          "Jazz Night",
		Location:       "Berlin",
		Date:           "2026-10-01",
		Price:          40.0,
		Capacity:       10,
		RemainingSeats: 5,
		CreatedBy:      "organizer-1",
		Status:         models.EventApproved,
	}
}

func attendee() *models.User {
	return &models.User{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  models.RoleUser,
	}
}

// StartCheckout

func TestStartCheckoutCreatesSessionWithMetadata(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("GetUser", ctx, "user-1").Return(attendee(), nil)
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(nil, nil)
	m.RSVPs.On("CreateWithSeat", ctx, mock.MatchedBy(func(r *models.RSVP) bool {
		return r.UserID == "user-1" && r.EventID == "event-1" && r.PaymentStatus == models.StatusPending
	})).Return(nil)
	m.Processor.On("CreateSession", ctx, mock.MatchedBy(func(req models.CheckoutSessionRequest) bool {
		return req.Amount == 40.0 &&
			req.Currency == "usd" &&
			req.ProductName == "Jazz Night" &&
			req.CustomerEmail == "ada@example.com" &&
			req.EventID == "event-1" &&
			req.UserID == "user-1" &&
			req.RSVPID != ""
	})).Return(&models.CheckoutSession{SessionID: "cs_123", URL: "https://stripe.test/cs_123"}, nil)
	m.Payments.On("SavePayment", ctx, mock.MatchedBy(func(p *models.Payment) bool {
		return p.StripeSessionID == "cs_123" && p.Status == models.StatusPending && p.Amount == 40.0
	})).Return(nil)

	session, err := svc.StartCheckout(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.Equal(t, "https://stripe.test/cs_123", session.URL)

	m.RSVPs.AssertExpectations(t)
	m.Processor.AssertExpectations(t)
	m.Payments.AssertExpectations(t)
}

func TestStartCheckoutReusesPendingRSVP(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	existing := &models.RSVP{
		ID:            "rsvp-old",
		UserID:        "user-1",
		EventID:       "event-1",
		PaymentStatus: models.StatusPending,
	}
	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("GetUser", ctx, "user-1").Return(attendee(), nil)
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(existing, nil)
	m.Processor.On("CreateSession", ctx, mock.MatchedBy(func(req models.CheckoutSessionRequest) bool {
		return req.RSVPID == "rsvp-old"
	})).Return(&models.CheckoutSession{SessionID: "cs_456", URL: "https://stripe.test/cs_456"}, nil)
	m.Payments.On("SavePayment", ctx, mock.Anything).Return(nil)

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	require.NoError(t, err)

	// No second seat is taken for the retried checkout.
	m.RSVPs.AssertNotCalled(t, "CreateWithSeat", mock.Anything, mock.Anything)
}

func TestStartCheckoutAlreadyPaid(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	paid := &models.RSVP{ID: "rsvp-1", UserID: "user-1", EventID: "event-1", PaymentStatus: models.StatusPaid}
	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("GetUser", ctx, "user-1").Return(attendee(), nil)
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(paid, nil)

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
}

func TestStartCheckoutRejectsUnapprovedEvent(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	event := approvedEvent()
	event.Status = models.EventPending
	m.Events.On("GetEvent", ctx, "event-1").Return(event, nil)

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	assert.ErrorIs(t, err, models.ErrEventNotApproved)
}

func TestStartCheckoutRejectsFreeEvent(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	event := approvedEvent()
	event.Price = 0
	m.Events.On("GetEvent", ctx, "event-1").Return(event, nil)

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStartCheckoutCompensatesOnProcessorFailure(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("GetUser", ctx, "user-1").Return(attendee(), nil)
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(nil, nil)
	m.RSVPs.On("CreateWithSeat", ctx, mock.Anything).Return(nil)
	m.Processor.On("CreateSession", ctx, mock.Anything).Return(nil, errors.New("stripe down"))
	m.RSVPs.On("DeletePendingWithRelease", ctx, "user-1", "event-1").Return(true, nil)

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	assert.ErrorIs(t, err, models.ErrCheckoutUnavailable)

	// The freshly reserved seat went back.
	m.RSVPs.AssertCalled(t, "DeletePendingWithRelease", ctx, "user-1", "event-1")
}

func TestStartCheckoutKeepsReusedRSVPOnFailure(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	existing := &models.RSVP{ID: "rsvp-old", UserID: "user-1", EventID: "event-1", PaymentStatus: models.StatusPending}
	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("GetUser", ctx, "user-1").Return(attendee(), nil)
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(existing, nil)
	m.Processor.On("CreateSession", ctx, mock.Anything).Return(nil, errors.New("stripe down"))

	_, err := svc.StartCheckout(ctx, "user-1", "event-1")
	require.Error(t, err)

	// The reservation predates this checkout, so it is not unwound.
	m.RSVPs.AssertNotCalled(t, "DeletePendingWithRelease", mock.Anything, mock.Anything, mock.Anything)
}

// ConfirmPayment

func pendingPayment() *models.Payment {
	return &models.Payment{
		ID:              "pay-1",
		UserID:          "user-1",
		EventID:         "event-1",
		RSVPID:          "rsvp-1",
		Amount:          40.0,
		Currency:        "usd",
		StripeSessionID: "cs_123",
		Status:          models.StatusPending,
	}
}

func expectSettlementEffects(m *serviceMocks) {
	m.Users.On("GetUser", mock.Anything, "user-1").Return(attendee(), nil)
	m.Mailer.On("SendPaymentConfirmation", "ada@example.com", "Ada", "Jazz Night", 40.0, "2026-10-01").Return(nil)
	m.Mailer.On("SendQRCode", "ada@example.com", "Ada", "Jazz Night", "2026-10-01", "Berlin", mock.Anything).Return(nil)
	m.Notifier.On("Notify", mock.Anything, "user-1", mock.Anything, mock.Anything, models.NotifPayment, "event-1", "").Return(nil)
	m.Notifier.On("Notify", mock.Anything, "organizer-1", mock.Anything, mock.Anything, models.NotifRegistration, "event-1", "user-1").Return(nil)
}

func TestConfirmPaymentSettlesAndSplitsRevenue(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Lock.On("Acquire", ctx, "cs_123", mock.Anything).Return(true, nil)
	m.Lock.On("Release", ctx, "cs_123", mock.Anything).Return(nil)
	m.Processor.On("RetrieveSession", ctx, "cs_123").Return(&models.CheckoutSession{SessionID: "cs_123", PaymentCompleted: true}, nil)
	m.Payments.On("GetBySessionID", ctx, "cs_123").Return(pendingPayment(), nil)
	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("PlatformAccountID", ctx).Return("admin-1", nil)
	m.RSVPs.On("SettlePaid", ctx, "rsvp-1", mock.MatchedBy(func(credits []wallet.Credit) bool {
		if len(credits) != 2 {
			return false
		}
		organizer, platform := credits[0], credits[1]
		return organizer.UserID == "organizer-1" && organizer.Amount == 36.0 &&
			platform.UserID == "admin-1" && platform.Amount == 4.0
	})).Return(true, nil)
	m.Payments.On("MarkPaid", ctx, "cs_123").Return(true, nil)
	expectSettlementEffects(m)

	payment, err := svc.ConfirmPayment(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, payment.Status)

	m.RSVPs.AssertExpectations(t)
	m.Payments.AssertExpectations(t)
	m.Mailer.AssertExpectations(t)
	m.Notifier.AssertExpectations(t)
}

func TestConfirmPaymentDuplicateIsNoOp(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	settled := pendingPayment()
	settled.Status = models.StatusPaid

	m.Lock.On("Acquire", ctx, "cs_123", mock.Anything).Return(true, nil)
	m.Lock.On("Release", ctx, "cs_123", mock.Anything).Return(nil)
	m.Processor.On("RetrieveSession", ctx, "cs_123").Return(&models.CheckoutSession{SessionID: "cs_123", PaymentCompleted: true}, nil)
	m.Payments.On("GetBySessionID", ctx, "cs_123").Return(settled, nil)

	payment, err := svc.ConfirmPayment(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, payment.Status)

	// Nothing is credited a second time.
	m.RSVPs.AssertNotCalled(t, "SettlePaid", mock.Anything, mock.Anything, mock.Anything)
	m.Payments.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
}

func TestConfirmPaymentRejectsUnpaidSession(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Lock.On("Acquire", ctx, "cs_123", mock.Anything).Return(true, nil)
	m.Lock.On("Release", ctx, "cs_123", mock.Anything).Return(nil)
	m.Processor.On("RetrieveSession", ctx, "cs_123").Return(&models.CheckoutSession{SessionID: "cs_123", PaymentCompleted: false}, nil)

	_, err := svc.ConfirmPayment(ctx, "cs_123")
	assert.ErrorIs(t, err, models.ErrPaymentNotCompleted)

	m.Payments.AssertNotCalled(t, "GetBySessionID", mock.Anything, mock.Anything)
}

func TestConfirmPaymentSkipsPlatformShareWithoutAdmin(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Lock.On("Acquire", ctx, "cs_123", mock.Anything).Return(true, nil)
	m.Lock.On("Release", ctx, "cs_123", mock.Anything).Return(nil)
	m.Processor.On("RetrieveSession", ctx, "cs_123").Return(&models.CheckoutSession{SessionID: "cs_123", PaymentCompleted: true}, nil)
	m.Payments.On("GetBySessionID", ctx, "cs_123").Return(pendingPayment(), nil)
	m.Events.On("GetEvent", ctx, "event-1").Return(approvedEvent(), nil)
	m.Users.On("PlatformAccountID", ctx).Return("", models.ErrNotFound)
	m.RSVPs.On("SettlePaid", ctx, "rsvp-1", mock.MatchedBy(func(credits []wallet.Credit) bool {
		return len(credits) == 1 && credits[0].UserID == "organizer-1" && credits[0].Amount == 36.0
	})).Return(true, nil)
	m.Payments.On("MarkPaid", ctx, "cs_123").Return(true, nil)
	expectSettlementEffects(m)

	_, err := svc.ConfirmPayment(ctx, "cs_123")
	require.NoError(t, err)
	m.RSVPs.AssertExpectations(t)
}

func TestConfirmPaymentFailsWhenLockHeld(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.Lock.On("Acquire", ctx, "cs_123", mock.Anything).Return(false, nil)

	_, err := svc.ConfirmPayment(ctx, "cs_123")
	require.Error(t, err)
	m.Processor.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
}

// CancelCheckout

func TestCancelCheckoutReleasesPendingSeat(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	pending := &models.RSVP{ID: "rsvp-1", UserID: "user-1", EventID: "event-1", PaymentStatus: models.StatusPending}
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(pending, nil)
	m.RSVPs.On("DeletePendingWithRelease", ctx, "user-1", "event-1").Return(true, nil)

	removed, err := svc.CancelCheckout(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestCancelCheckoutAfterSettlementIsNoOp(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	paid := &models.RSVP{ID: "rsvp-1", UserID: "user-1", EventID: "event-1", PaymentStatus: models.StatusPaid}
	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(paid, nil)
	m.RSVPs.On("DeletePendingWithRelease", ctx, "user-1", "event-1").Return(false, nil)

	removed, err := svc.CancelCheckout(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.False(t, removed, "a settled registration survives a stray cancel redirect")
}

func TestCancelCheckoutWithoutRSVP(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	m.RSVPs.On("GetByUserAndEvent", ctx, "user-1", "event-1").Return(nil, nil)

	removed, err := svc.CancelCheckout(ctx, "user-1", "event-1")
	require.NoError(t, err)
	assert.False(t, removed)
	m.RSVPs.AssertNotCalled(t, "DeletePendingWithRelease", mock.Anything, mock.Anything, mock.Anything)
}
