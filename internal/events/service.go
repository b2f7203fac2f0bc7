package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventify/internal/auth"
	"eventify/internal/logger"
	"eventify/internal/models"

	"github.com/google/uuid"
)

type Store interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event, newCapacity int) error
	DeleteEvent(ctx context.Context, id string) error
	ListApproved(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListPending(ctx context.Context) ([]models.Event, error)
	UpdateStatus(ctx context.Context, event *models.Event) error
	ApproveAllPending(ctx context.Context, adminID string) (int64, error)
}

type Service struct {
	DB     Store
	logger *logger.Logger
}

func NewService(db Store, log *logger.Logger) *Service {
	return &Service{DB: db, logger: log}
}

// Create stores a new event in pending state with all seats available.
// Events go live only after admin approval.
func (s *Service) Create(ctx context.Context, ident auth.Identity, req models.EventRequest) (*models.Event, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	event := &models.Event{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Location:       req.Location,
		Date:           req.Date,
		Time:           req.Time,
		Category:       req.Category,
		Price:          req.Price,
		Capacity:       req.Capacity,
		RemainingSeats: req.Capacity,
		CreatedBy:      ident.UserID,
		Status:         models.EventPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("EVENT", fmt.Sprintf("Event %s created by %s, awaiting approval", event.ID, ident.UserID))
	return event, nil
}

func (s *Service) Get(ctx context.Context, ident auth.Identity, id string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	// Unapproved events are visible only to their organizer and admins.
	if event.Status != models.EventApproved && !canManage(ident, event) {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	return event, nil
}

func (s *Service) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	return s.DB.ListApproved(ctx, filter)
}

// Update edits an event. A capacity change shifts remaining seats by the
// same delta (clamped at 0), and an approved event drops back to pending
// for re-review.
func (s *Service) Update(ctx context.Context, ident auth.Identity, id string, req models.EventRequest) (*models.Event, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(ident, event) {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Location = req.Location
	event.Date = req.Date
	event.Time = req.Time
	event.Category = req.Category
	event.Price = req.Price

	if event.Status == models.EventApproved {
		event.Status = models.EventPending
		event.ApprovedBy = ""
		event.ApprovedAt = time.Time{}
	}

	if err := s.DB.UpdateEvent(ctx, event, req.Capacity); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.Info("EVENT", fmt.Sprintf("Event %s updated, back to pending review", id))
	return event, nil
}

func (s *Service) Delete(ctx context.Context, ident auth.Identity, id string) error {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(ident, event) {
		return fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	return s.DB.DeleteEvent(ctx, id)
}

// ---------------- ADMIN REVIEW ----------------

func (s *Service) ListPending(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListPending(ctx)
}

func (s *Service) Approve(ctx context.Context, ident auth.Identity, id string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Status = models.EventApproved
	event.ApprovedBy = ident.UserID
	event.ApprovedAt = time.Now()
	event.RejectionReason = ""
	if err := s.DB.UpdateStatus(ctx, event); err != nil {
		return nil, fmt.Errorf("approve event: %w", err)
	}
	s.logger.Info("EVENT", fmt.Sprintf("Event %s approved by %s", id, ident.UserID))
	return event, nil
}

func (s *Service) Reject(ctx context.Context, ident auth.Identity, id, reason string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "No reason provided"
	}
	event.Status = models.EventRejected
	event.RejectionReason = reason
	if err := s.DB.UpdateStatus(ctx, event); err != nil {
		return nil, fmt.Errorf("reject event: %w", err)
	}
	s.logger.Info("EVENT", fmt.Sprintf("Event %s rejected by %s", id, ident.UserID))
	return event, nil
}

func (s *Service) ApproveAll(ctx context.Context, ident auth.Identity) (int64, error) {
	return s.DB.ApproveAllPending(ctx, ident.UserID)
}

func validate(req models.EventRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if req.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", models.ErrValidation)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
	}
	return nil
}

func canManage(ident auth.Identity, event *models.Event) bool {
	return ident.UserID == event.CreatedBy || ident.Role == models.RoleAdmin
}
