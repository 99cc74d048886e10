package service

import (
	"context"
	"io"
	"time"

	"fleetbook/pkg/config"
	mongotx "fleetbook/pkg/db/mongo"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

type mockBookingRepo struct {
	createFn                   func(ctx context.Context, booking *model.Booking) error
	findByIDFn                 func(ctx context.Context, id string) (*model.Booking, error)
	findAllFn                  func(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, error)
	countFn                    func(ctx context.Context, status string) (int64, error)
	committedPlatesFn          func(ctx context.Context, vehicleID string, start, end time.Time) ([]string, error)
	updateStatusFn             func(ctx context.Context, id, fromStatus, toStatus string, now time.Time) (*model.Booking, error)
	bulkCancelExpiredPendingFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	booking.ID = "64b000000000000000000099"
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Booking, error) {
	return m.findAllFn(ctx, status, limit, offset)
}

func (m *mockBookingRepo) Count(ctx context.Context, status string) (int64, error) {
	return m.countFn(ctx, status)
}

func (m *mockBookingRepo) CommittedPlates(ctx context.Context, vehicleID string, start, end time.Time) ([]string, error) {
	if m.committedPlatesFn != nil {
		return m.committedPlatesFn(ctx, vehicleID, start, end)
	}
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, now time.Time) (*model.Booking, error) {
	return m.updateStatusFn(ctx, id, fromStatus, toStatus, now)
}

func (m *mockBookingRepo) BulkCancelExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.bulkCancelExpiredPendingFn(ctx, cutoff)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepo struct {
	createFn func(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error)
	deleteFn func(ctx context.Context, lockID string) error
	deleted  []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, lockID)
	}
	return nil
}

type mockVehicleFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Vehicle, error)
}

func (m *mockVehicleFinder) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}

type mockPublisher struct {
	created       []*model.Booking
	statusChanges []string
}

func (m *mockPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	m.created = append(m.created, booking)
	return nil
}

func (m *mockPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, prevStatus string) error {
	m.statusChanges = append(m.statusChanges, prevStatus+"->"+booking.Status)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		LockTTL: 10 * time.Second,
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.TEXT,
			Output: io.Discard,
		}),
	}
}
