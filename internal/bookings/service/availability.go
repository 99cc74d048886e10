package service

import (
	"context"
	"errors"
	"math"
	"time"

	"fleetbook/internal/bookings/repository"
	vehicleserrors "fleetbook/internal/vehicles/errors"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
)

// VehicleFinder is the slice of the vehicle catalog the availability engine
// needs: fetch one model with its plate pool and price.
type VehicleFinder interface {
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)
}

// Availability is a non-binding admission quote: the vehicle, the plate the
// engine would assign, and the total price for the range. It becomes binding
// only when a booking is persisted under the admission lock.
type Availability struct {
	Vehicle     *model.Vehicle
	PlateNumber string
	TotalPrice  float64
}

type AvailabilityService interface {
	FindAvailability(ctx context.Context, vehicleID string, start, end time.Time) (*Availability, error)
}

type availabilityService struct {
	vehicles VehicleFinder
	bookings repository.BookingRepository
}

func NewAvailabilityService(vehicles VehicleFinder, bookings repository.BookingRepository) AvailabilityService {
	return &availabilityService{
		vehicles: vehicles,
		bookings: bookings,
	}
}

// FindAvailability computes which plates of a vehicle model are free for
// [start, end) and deterministically picks one. Read-only; the result can go
// stale the moment another booking is admitted, so Create re-runs this under
// the vehicle admission lock.
func (s *availabilityService) FindAvailability(ctx context.Context, vehicleID string, start, end time.Time) (*Availability, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("End date must be later than start date")
	}

	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", vehicleID)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to load vehicle", err)
	}

	committed, err := s.bookings.CommittedPlates(ctx, vehicleID, start, end)
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	free := freePlates(vehicle.PlateNumbers, committed)
	if len(free) == 0 {
		return nil, apperrors.CapacityExceeded("The vehicle is fully booked for the selected dates")
	}

	return &Availability{
		Vehicle:     vehicle,
		PlateNumber: free[0],
		TotalPrice:  vehicle.PricePerDay * float64(RentalDays(start, end)),
	}, nil
}

// freePlates subtracts committed plates from the vehicle's pool, preserving
// the pool's stored order so selection is stable and reproducible.
func freePlates(pool, committed []string) []string {
	taken := make(map[string]struct{}, len(committed))
	for _, plate := range committed {
		taken[plate] = struct{}{}
	}

	free := make([]string, 0, len(pool))
	for _, plate := range pool {
		if _, ok := taken[plate]; !ok {
			free = append(free, plate)
		}
	}
	return free
}

// RentalDays is the whole number of charged days for [start, end): the
// duration in calendar days, any partial day rounded up. Never below 1,
// since end is strictly after start.
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}
