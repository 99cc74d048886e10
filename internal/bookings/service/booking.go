package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingserrors "fleetbook/internal/bookings/errors"
	"fleetbook/internal/bookings/events"
	"fleetbook/internal/bookings/repository"
	"fleetbook/internal/bookings/validator"
	"fleetbook/pkg/clock"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest, requesterID string) (*model.Booking, error)
	Transition(ctx context.Context, id, targetStatus, requesterID string, isAdmin bool) (*model.Booking, error)
	GetByID(ctx context.Context, id, requesterID string, isAdmin bool) (*model.Booking, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.VehicleLockRepository
	availability AvailabilityService
	validator    *validator.BookingValidator
	publisher    events.Publisher
	clock        clock.Clock
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.VehicleLockRepository,
	availability AvailabilityService,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		lockRepo:     lockRepo,
		availability: availability,
		validator:    validator,
		publisher:    publisher,
		clock:        clk,
		cfg:          cfg,
	}
}

// Create admits a booking for [req.StartDate, req.EndDate). Admission runs
// under a per-vehicle advisory lock and re-checks availability inside the
// transaction, so two concurrent requests for the last plate cannot both win.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest, requesterID string) (*model.Booking, error) {
	if requesterID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	lockID, err := s.acquireVehicleLock(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseVehicleLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release vehicle lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		availability, err := s.availability.FindAvailability(sessCtx, req.VehicleID, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			UserID:      requesterID,
			VehicleID:   req.VehicleID,
			PlateNumber: availability.PlateNumber,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			TotalPrice:  availability.TotalPrice,
			Status:      model.StatusPending,
		}
		if err := s.validator.Validate(booking); err != nil {
			s.cfg.Log.Warn("Booking validation failed", "error", err)
			return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"vehicle_id", req.VehicleID,
			"user_id", requesterID,
			"error", err,
		)
		return nil, err
	}

	if pubErr := s.publisher.BookingCreated(ctx, booking); pubErr != nil {
		s.cfg.Log.Warn("Failed to publish booking created event", "booking_id", booking.ID, "error", pubErr)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"vehicle_id", booking.VehicleID,
		"plate_number", booking.PlateNumber,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)
	return booking, nil
}

// Transition applies a caller-requested status change. Admins may walk any
// allowed edge of the state graph; owners may only cancel their own pending
// bookings while they are still pending. Bookings whose rental has started
// are frozen for everyone; only the expiry sweep touches those.
func (s *bookingService) Transition(ctx context.Context, id, targetStatus, requesterID string, isAdmin bool) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !model.ValidTargetStatus(targetStatus) {
		return nil, apperrors.InvalidInput("Invalid status value")
	}

	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.StartDate.After(s.clock.Now()) {
		return nil, apperrors.Forbidden("Cannot modify a booking that has already started or is in the past")
	}

	if !isAdmin {
		if booking.OwnerID() != requesterID {
			return nil, apperrors.Forbidden("You do not have permission to modify this booking")
		}
		if targetStatus != model.StatusCancelled {
			return nil, apperrors.Forbidden("You do not have permission to modify this booking")
		}
		if booking.Status != model.StatusPending {
			return nil, apperrors.Forbidden("Only pending bookings can be cancelled by their owner")
		}
	}

	if !CanTransition(booking.Status, targetStatus) {
		return nil, apperrors.Forbidden(fmt.Sprintf(
			"Cannot change booking status from %s to %s", booking.Status, targetStatus,
		))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, booking.Status, targetStatus, s.clock.Now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusConflict) {
			return nil, apperrors.Conflict("Booking status changed concurrently. Please retry.")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	if pubErr := s.publisher.BookingStatusChanged(ctx, updated, booking.Status); pubErr != nil {
		s.cfg.Log.Warn("Failed to publish booking status event", "booking_id", updated.ID, "error", pubErr)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", updated.ID,
		"from", booking.Status,
		"to", updated.Status,
		"by", requesterID,
		"admin", isAdmin,
	)
	return updated, nil
}

func (s *bookingService) GetByID(ctx context.Context, id, requesterID string, isAdmin bool) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && booking.OwnerID() != requesterID {
		return nil, apperrors.Forbidden("You do not have permission to view this booking")
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if status != "" && status != model.StatusPending && status != model.StatusConfirmed && status != model.StatusCancelled {
		return nil, 0, apperrors.InvalidInput("Invalid status filter")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// --- Helpers ---

func (s *bookingService) findByID(ctx context.Context, id string) (*model.Booking, error) {
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

// acquireVehicleLock takes the per-vehicle advisory lock that serializes
// admission. Contention means another request is mid-admission for the same
// vehicle, which the caller reports as a retryable conflict.
func (s *bookingService) acquireVehicleLock(ctx context.Context, vehicleID string) (string, error) {
	lockID := fmt.Sprintf("vehicle_lock_%s", vehicleID)

	lock := &model.VehicleLock{
		ID:        lockID,
		ExpiresAt: s.clock.Now().Add(s.cfg.LockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This vehicle is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire vehicle lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseVehicleLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
