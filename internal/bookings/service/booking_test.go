package service

import (
	"context"
	"io"
	"testing"
	"time"

	bookingserrors "fleetbook/internal/bookings/errors"
	"fleetbook/internal/bookings/validator"
	"fleetbook/pkg/clock"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testUserID      = "64c000000000000000000001"
	testOtherUserID = "64c000000000000000000002"
	testBookingID   = "64b000000000000000000001"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testValidator() *validator.BookingValidator {
	return validator.NewBookingValidator(logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	}))
}

func newTestBookingService(repo *mockBookingRepo, locks *mockLockRepo, finder *mockVehicleFinder, pub *mockPublisher) BookingService {
	return NewBookingService(
		repo,
		locks,
		NewAvailabilityService(finder, repo),
		testValidator(),
		pub,
		clock.Fixed{T: testNow},
		testConfig(),
	)
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		VehicleID: testVehicleID,
		StartDate: testNow.AddDate(0, 0, 7),
		EndDate:   testNow.AddDate(0, 0, 10),
	}
}

func pendingBooking(userID string, start time.Time) *model.Booking {
	return &model.Booking{
		ID:          testBookingID,
		UserID:      userID,
		VehicleID:   testVehicleID,
		PlateNumber: "34A",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 3),
		TotalPrice:  300,
		Status:      model.StatusPending,
	}
}

func TestCreateBooking(t *testing.T) {
	repo := &mockBookingRepo{}
	locks := &mockLockRepo{}
	pub := &mockPublisher{}
	svc := newTestBookingService(repo, locks, fixedFinder(testVehicle("34A", "34B")), pub)

	booking, err := svc.Create(context.Background(), validRequest(), testUserID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", booking.Status)
	}
	if booking.PlateNumber != "34A" {
		t.Errorf("plate = %q, want 34A", booking.PlateNumber)
	}
	if booking.TotalPrice != 300 {
		t.Errorf("total price = %v, want 300", booking.TotalPrice)
	}
	if booking.UserID != testUserID {
		t.Errorf("user id = %q, want requester", booking.UserID)
	}
	if len(pub.created) != 1 {
		t.Errorf("created events = %d, want 1", len(pub.created))
	}
	if len(locks.deleted) != 1 {
		t.Errorf("lock releases = %d, want 1", len(locks.deleted))
	}
}

func TestCreateBookingFullyBooked(t *testing.T) {
	repo := &mockBookingRepo{
		committedPlatesFn: func(ctx context.Context, vehicleID string, s, e time.Time) ([]string, error) {
			return []string{"34A", "34B"}, nil
		},
	}
	locks := &mockLockRepo{}
	pub := &mockPublisher{}
	svc := newTestBookingService(repo, locks, fixedFinder(testVehicle("34A", "34B")), pub)

	_, err := svc.Create(context.Background(), validRequest(), testUserID)
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeCapacityExceeded)
	}
	if len(pub.created) != 0 {
		t.Errorf("created events = %d, want 0", len(pub.created))
	}
	if len(locks.deleted) != 1 {
		t.Errorf("lock must be released after a failed admission, releases = %d", len(locks.deleted))
	}
}

func TestCreateBookingLockContention(t *testing.T) {
	locks := &mockLockRepo{
		createFn: func(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestBookingService(&mockBookingRepo{}, locks, fixedFinder(testVehicle("34A")), &mockPublisher{})

	_, err := svc.Create(context.Background(), validRequest(), testUserID)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeConflict)
	}
	if len(locks.deleted) != 0 {
		t.Errorf("must not release a lock it never acquired, releases = %d", len(locks.deleted))
	}
}

func TestCreateBookingInvalidRequest(t *testing.T) {
	svc := newTestBookingService(&mockBookingRepo{}, &mockLockRepo{}, fixedFinder(testVehicle("34A")), &mockPublisher{})

	cases := []struct {
		name string
		req  *model.BookingRequest
	}{
		{"missing vehicle", &model.BookingRequest{StartDate: testNow, EndDate: testNow.AddDate(0, 0, 1)}},
		{"bad vehicle id", &model.BookingRequest{VehicleID: "nope", StartDate: testNow, EndDate: testNow.AddDate(0, 0, 1)}},
		{"end before start", &model.BookingRequest{VehicleID: testVehicleID, StartDate: testNow, EndDate: testNow.AddDate(0, 0, -1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req, testUserID)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Fatalf("err = %v, want %s", err, apperrors.CodeValidation)
			}
		})
	}
}

func transitionFixture(t *testing.T, stored *model.Booking) (BookingService, *mockPublisher) {
	t.Helper()
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			if id != stored.ID {
				return nil, bookingserrors.ErrNotFound
			}
			b := *stored
			return &b, nil
		},
		updateStatusFn: func(ctx context.Context, id, fromStatus, toStatus string, now time.Time) (*model.Booking, error) {
			if fromStatus != stored.Status {
				return nil, bookingserrors.ErrStatusConflict
			}
			updated := *stored
			updated.Status = toStatus
			updated.UpdatedAt = now
			return &updated, nil
		},
	}
	pub := &mockPublisher{}
	return newTestBookingService(repo, &mockLockRepo{}, fixedFinder(testVehicle("34A")), pub), pub
}

func TestTransitionAdminConfirms(t *testing.T) {
	svc, pub := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	updated, err := svc.Transition(context.Background(), testBookingID, model.StatusConfirmed, testOtherUserID, true)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", updated.Status)
	}
	if len(pub.statusChanges) != 1 || pub.statusChanges[0] != "pending->confirmed" {
		t.Errorf("status events = %v, want [pending->confirmed]", pub.statusChanges)
	}
}

func TestTransitionOwnerCancelsPending(t *testing.T) {
	svc, _ := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	updated, err := svc.Transition(context.Background(), testBookingID, model.StatusCancelled, testUserID, false)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("status = %q, want cancelled", updated.Status)
	}
}

func TestTransitionOwnerCannotConfirm(t *testing.T) {
	svc, _ := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	_, err := svc.Transition(context.Background(), testBookingID, model.StatusConfirmed, testUserID, false)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

// Cancelling a confirmed booking is an administrator action; the owner's
// self-service cancellation only covers bookings still pending.
func TestTransitionOwnerCannotCancelConfirmed(t *testing.T) {
	stored := pendingBooking(testUserID, testNow.AddDate(0, 0, 2))
	stored.Status = model.StatusConfirmed
	svc, pub := transitionFixture(t, stored)

	_, err := svc.Transition(context.Background(), testBookingID, model.StatusCancelled, testUserID, false)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeForbidden)
	}
	if len(pub.statusChanges) != 0 {
		t.Errorf("status events = %v, want none", pub.statusChanges)
	}
}

func TestTransitionNonOwnerForbidden(t *testing.T) {
	svc, _ := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	_, err := svc.Transition(context.Background(), testBookingID, model.StatusCancelled, testOtherUserID, false)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

// A booking whose rental has started is frozen, even for its owner and even
// for admins. The freeze takes effect at the start instant itself. Only the
// expiry sweep touches those.
func TestTransitionPastBookingFrozen(t *testing.T) {
	starts := map[string]time.Time{
		"started yesterday": testNow.AddDate(0, 0, -1),
		"starts right now":  testNow,
	}

	for name, start := range starts {
		for _, admin := range []bool{false, true} {
			t.Run(name, func(t *testing.T) {
				svc, _ := transitionFixture(t, pendingBooking(testUserID, start))
				_, err := svc.Transition(context.Background(), testBookingID, model.StatusCancelled, testUserID, admin)
				if !apperrors.IsCode(err, apperrors.CodeForbidden) {
					t.Errorf("admin=%v: err = %v, want %s", admin, err, apperrors.CodeForbidden)
				}
			})
		}
	}
}

func TestTransitionStateGraph(t *testing.T) {
	start := testNow.AddDate(0, 0, 2)

	cases := []struct {
		name     string
		from, to string
		wantErr  string
	}{
		{"pending to confirmed", model.StatusPending, model.StatusConfirmed, ""},
		{"pending to cancelled", model.StatusPending, model.StatusCancelled, ""},
		{"confirmed to cancelled", model.StatusConfirmed, model.StatusCancelled, ""},
		{"confirmed to confirmed", model.StatusConfirmed, model.StatusConfirmed, apperrors.CodeForbidden},
		{"cancelled to confirmed", model.StatusCancelled, model.StatusConfirmed, apperrors.CodeForbidden},
		{"cancelled to cancelled", model.StatusCancelled, model.StatusCancelled, apperrors.CodeForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stored := pendingBooking(testUserID, start)
			stored.Status = tc.from
			svc, _ := transitionFixture(t, stored)

			_, err := svc.Transition(context.Background(), testBookingID, tc.to, testOtherUserID, true)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Transition: %v", err)
				}
				return
			}
			if !apperrors.IsCode(err, tc.wantErr) {
				t.Fatalf("err = %v, want %s", err, tc.wantErr)
			}
		})
	}
}

func TestTransitionInvalidTarget(t *testing.T) {
	svc, _ := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	for _, target := range []string{"", "pending", "done", "PENDING"} {
		_, err := svc.Transition(context.Background(), testBookingID, target, testUserID, true)
		if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("target %q: err = %v, want %s", target, err, apperrors.CodeInvalidInput)
		}
	}
}

func TestTransitionNotFound(t *testing.T) {
	svc, _ := transitionFixture(t, pendingBooking(testUserID, testNow.AddDate(0, 0, 2)))

	_, err := svc.Transition(context.Background(), "64b0000000000000000000ff", model.StatusCancelled, testUserID, true)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestTransitionConcurrentStatusChange(t *testing.T) {
	stored := pendingBooking(testUserID, testNow.AddDate(0, 0, 2))
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			b := *stored
			return &b, nil
		},
		updateStatusFn: func(ctx context.Context, id, fromStatus, toStatus string, now time.Time) (*model.Booking, error) {
			// Someone else moved the status between read and write.
			return nil, bookingserrors.ErrStatusConflict
		},
	}
	svc := newTestBookingService(repo, &mockLockRepo{}, fixedFinder(testVehicle("34A")), &mockPublisher{})

	_, err := svc.Transition(context.Background(), testBookingID, model.StatusConfirmed, testUserID, true)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeConflict)
	}
}

func TestGetByIDOwnership(t *testing.T) {
	stored := pendingBooking(testUserID, testNow.AddDate(0, 0, 2))
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Booking, error) {
			b := *stored
			return &b, nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepo{}, fixedFinder(testVehicle("34A")), &mockPublisher{})

	if _, err := svc.GetByID(context.Background(), testBookingID, testUserID, false); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), testBookingID, testOtherUserID, true); err != nil {
		t.Errorf("admin read: %v", err)
	}
	_, err := svc.GetByID(context.Background(), testBookingID, testOtherUserID, false)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("stranger read: err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

func TestGetAllInvalidStatusFilter(t *testing.T) {
	svc := newTestBookingService(&mockBookingRepo{}, &mockLockRepo{}, fixedFinder(testVehicle("34A")), &mockPublisher{})

	_, _, err := svc.GetAll(context.Background(), "done", 10, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidInput)
	}
}
