package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	vehicleserrors "fleetbook/internal/vehicles/errors"
	"fleetbook/internal/vehicles/repository"
	"fleetbook/internal/vehicles/validator"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type VehicleService interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type vehicleService struct {
	repo      repository.VehicleRepository
	validator *validator.VehicleValidator
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	validator *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, vehicle *model.Vehicle) error {
	s.sanitize(vehicle)
	if err := s.validate(vehicle); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyPlatesFree(sessCtx, vehicle.PlateNumbers, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, vehicle); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("A vehicle with the same model or plate number already exists")
			}
			return apperrors.Internal("Failed to create vehicle", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create vehicle", "brand", vehicle.Brand, "model", vehicle.Model, "error", err)
		return err
	}

	s.cfg.Log.Info("Vehicle created successfully",
		"id", vehicle.ID,
		"brand", vehicle.Brand,
		"model", vehicle.Model,
		"plates", len(vehicle.PlateNumbers),
	)
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	return vehicle, nil
}

func (s *vehicleService) GetAll(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	if filter != nil {
		if (filter.StartDate == nil) != (filter.EndDate == nil) {
			return nil, 0, apperrors.InvalidInput("Both start_date and end_date are required for availability filtering")
		}
		if filter.StartDate != nil && !filter.EndDate.After(*filter.StartDate) {
			return nil, 0, apperrors.InvalidInput("End date must be later than start date")
		}
	}

	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

func (s *vehicleService) Update(ctx context.Context, id string, updates *model.VehicleUpdate) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Vehicle update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeVehicleUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	var updated *model.Vehicle
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyPlatesFree(sessCtx, merged.PlateNumbers, id); err != nil {
			return err
		}
		result, err := s.repo.Update(sessCtx, id, merged)
		if err != nil {
			if errors.Is(err, vehicleserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Vehicle", id)
			}
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("A vehicle with the same model or plate number already exists")
			}
			return apperrors.Internal("Failed to update vehicle", err)
		}
		updated = result
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update vehicle", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Vehicle updated successfully", "id", id)
	return updated, nil
}

func (s *vehicleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return apperrors.Internal("Failed to delete vehicle", err)
	}

	s.cfg.Log.Info("Vehicle deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *vehicleService) sanitize(v *model.Vehicle) {
	v.Brand = sanitizer.NormalizeBrand(v.Brand)
	v.Model = sanitizer.NormalizeModel(v.Model)
	v.PlateNumbers = sanitizer.NormalizePlates(v.PlateNumbers)
}

func (s *vehicleService) validate(vehicle *model.Vehicle) error {
	if err := s.validator.Validate(vehicle); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed", "error", err)
		return apperrors.Validation("Vehicle validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *vehicleService) mergeVehicleUpdates(existing *model.Vehicle, updates *model.VehicleUpdate) *model.Vehicle {
	merged := *existing

	if updates.Brand != "" {
		merged.Brand = updates.Brand
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.Image != "" {
		merged.Image = updates.Image
	}
	if updates.PricePerDay != nil {
		merged.PricePerDay = *updates.PricePerDay
	}
	if updates.VehicleType != "" {
		merged.VehicleType = updates.VehicleType
	}
	if updates.Doors != nil {
		merged.Doors = *updates.Doors
	}
	if updates.Passengers != nil {
		merged.Passengers = *updates.Passengers
	}
	if updates.TransmissionType != "" {
		merged.TransmissionType = updates.TransmissionType
	}
	if updates.FuelType != "" {
		merged.FuelType = updates.FuelType
	}
	if updates.PlateNumbers != nil {
		merged.PlateNumbers = updates.PlateNumbers
	}

	return &merged
}

// verifyPlatesFree rejects plates already registered to another vehicle. The
// unique multikey index on plate_numbers backs this check; the pre-check only
// turns an opaque duplicate key error into a message naming the plates.
func (s *vehicleService) verifyPlatesFree(ctx context.Context, plates []string, excludeID string) error {
	holders, err := s.repo.FindByPlates(ctx, plates, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check plate numbers", err)
	}
	if len(holders) == 0 {
		return nil
	}

	held := make(map[string]struct{})
	for _, holder := range holders {
		for _, plate := range holder.PlateNumbers {
			held[plate] = struct{}{}
		}
	}

	var taken []string
	for _, plate := range plates {
		if _, ok := held[plate]; ok {
			taken = append(taken, plate)
		}
	}
	if len(taken) == 0 {
		return nil
	}

	return apperrors.Conflict(fmt.Sprintf(
		"Plate number(s) already assigned to another vehicle: %s", strings.Join(taken, ", "),
	))
}
