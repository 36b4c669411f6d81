package service

import (
	"context"
	"errors"
	"time"

	"deskly/internal/availability"
	bookingserrors "deskly/internal/bookings/errors"
	"deskly/internal/bookings/events"
	"deskly/internal/bookings/repository"
	"deskly/internal/bookings/validator"
	"deskly/internal/pricing"
	userserrors "deskly/internal/users/errors"
	usersrepo "deskly/internal/users/repository"
	workspaceserrors "deskly/internal/workspaces/errors"
	workspacesrepo "deskly/internal/workspaces/repository"
	"deskly/pkg/config"
	apperrors "deskly/pkg/errors"
	"deskly/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID string, userID string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	locks      repository.WorkspaceLockRepository
	workspaces workspacesrepo.WorkspaceRepository
	users      usersrepo.UserRepository
	engine     availability.Engine
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	locks repository.WorkspaceLockRepository,
	workspaces workspacesrepo.WorkspaceRepository,
	users usersrepo.UserRepository,
	engine availability.Engine,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		locks:      locks,
		workspaces: workspaces,
		users:      users,
		engine:     engine,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
	}
}

// Create books a workspace for the requested interval. Writes for one
// workspace are serialized through an advisory lock, so the availability
// check and the insert cannot interleave with a competing request.
func (s *bookingService) Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error) {
	if customerID == "" {
		return nil, apperrors.Unauthorized("Customer identity is required")
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	workspace, err := s.workspaces.FindByID(ctx, req.WorkspaceID)
	if err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) || errors.Is(err, workspaceserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Workspace", req.WorkspaceID)
		}
		return nil, apperrors.Internal("Failed to retrieve workspace", err)
	}
	if !workspace.Active {
		return nil, apperrors.NotFoundWithID("Workspace", req.WorkspaceID)
	}

	if err := s.acquireLock(ctx, req.WorkspaceID); err != nil {
		return nil, err
	}
	defer s.releaseLock(req.WorkspaceID)

	booking := &model.Booking{
		WorkspaceID: req.WorkspaceID,
		CustomerID:  customerID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.BookingStatusConfirmed,
		TotalPrice:  pricing.Price(workspace, req.StartTime, req.EndTime),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		available, err := s.engine.IsAvailable(txCtx, req.WorkspaceID, req.StartTime, req.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if !available {
			return apperrors.Conflict("Workspace is already booked for the requested interval")
		}

		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Booking transaction failed", err)
	}

	if err := s.publisher.BookingCreated(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking created event",
			"booking_id", booking.ID, "error", err)
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"workspace_id", booking.WorkspaceID,
		"customer_id", booking.CustomerID,
		"total_price", booking.TotalPrice,
	)
	return booking, nil
}

// Cancel marks a booking cancelled. The owner or an admin may cancel;
// cancelling an already cancelled booking reports false without error.
func (s *bookingService) Cancel(ctx context.Context, bookingID string, userID string) (bool, error) {
	if userID == "" {
		return false, apperrors.Unauthorized("User identity is required")
	}

	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if booking.CustomerID != userID {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
				return false, apperrors.Unauthorized("Only the booking owner or an admin may cancel")
			}
			return false, apperrors.Internal("Failed to retrieve user", err)
		}
		if !user.IsAdmin() {
			return false, apperrors.Unauthorized("Only the booking owner or an admin may cancel")
		}
	}

	if booking.Status == model.BookingStatusCancelled {
		return false, nil
	}

	if err := s.acquireLock(ctx, booking.WorkspaceID); err != nil {
		return false, err
	}
	defer s.releaseLock(booking.WorkspaceID)

	// Re-read under the lock so a concurrent cancel stays idempotent.
	current, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return false, apperrors.Internal("Failed to retrieve booking", err)
	}
	if current.Status == model.BookingStatusCancelled {
		return false, nil
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		return false, apperrors.Internal("Failed to cancel booking", err)
	}

	if err := s.publisher.BookingCancelled(ctx, booking, userID); err != nil {
		s.cfg.Log.Warn("Failed to publish booking cancelled event",
			"booking_id", booking.ID, "error", err)
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", booking.ID,
		"workspace_id", booking.WorkspaceID,
		"cancelled_by", userID,
	)
	return true, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if customerID == "" {
		return nil, 0, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	bookings, err := s.repo.FindByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, count, nil
}

// acquireLock retries for up to WorkspaceLockWait before reporting the
// workspace busy. Busy is retryable by the caller; Conflict is not.
func (s *bookingService) acquireLock(ctx context.Context, workspaceID string) error {
	deadline := time.Now().Add(s.cfg.WorkspaceLockWait)

	for {
		err := s.locks.Create(ctx, workspaceID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Internal("Failed to acquire workspace lock", err)
		}

		if time.Now().After(deadline) {
			s.cfg.Log.Warn("Workspace lock wait exhausted", "workspace_id", workspaceID)
			return apperrors.Busy("Workspace is busy, please retry")
		}

		select {
		case <-ctx.Done():
			return apperrors.Timeout("Request cancelled while waiting for workspace lock")
		case <-time.After(s.cfg.WorkspaceLockRetry):
		}
	}
}

// releaseLock uses a fresh context so the lock is released even when the
// request context is already cancelled; the TTL index is the backstop.
func (s *bookingService) releaseLock(workspaceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.locks.Delete(ctx, workspaceID); err != nil {
		s.cfg.Log.Warn("Failed to release workspace lock",
			"workspace_id", workspaceID, "error", err)
	}
}
