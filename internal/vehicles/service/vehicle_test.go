package service

import (
	"context"
	"io"
	"testing"
	"time"

	vehicleserrors "fleetbook/internal/vehicles/errors"
	"fleetbook/internal/vehicles/validator"
	"fleetbook/pkg/config"
	mongotx "fleetbook/pkg/db/mongo"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

const testVehicleID = "64a000000000000000000001"

type mockVehicleRepo struct {
	createFn       func(ctx context.Context, vehicle *model.Vehicle) error
	findByIDFn     func(ctx context.Context, id string) (*model.Vehicle, error)
	findAllFn      func(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, error)
	countFn        func(ctx context.Context, filter *model.VehicleFilter) (int64, error)
	findByPlatesFn func(ctx context.Context, plates []string, excludeID string) ([]*model.Vehicle, error)
	updateFn       func(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error)
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockVehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle) error {
	if m.createFn != nil {
		return m.createFn(ctx, vehicle)
	}
	vehicle.ID = testVehicleID
	return nil
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockVehicleRepo) FindAll(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, error) {
	return m.findAllFn(ctx, filter, limit, offset)
}

func (m *mockVehicleRepo) Count(ctx context.Context, filter *model.VehicleFilter) (int64, error) {
	return m.countFn(ctx, filter)
}

func (m *mockVehicleRepo) FindByPlates(ctx context.Context, plates []string, excludeID string) ([]*model.Vehicle, error) {
	if m.findByPlatesFn != nil {
		return m.findByPlatesFn(ctx, plates, excludeID)
	}
	return nil, nil
}

func (m *mockVehicleRepo) Update(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error) {
	return m.updateFn(ctx, id, vehicle)
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockVehicleRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:  logger.ERROR,
			Format: logger.TEXT,
			Output: io.Discard,
		}),
	}
}

func newTestService(repo *mockVehicleRepo) VehicleService {
	cfg := testConfig()
	return NewVehicleService(repo, validator.NewVehicleValidator(cfg.Log), cfg)
}

func validVehicle() *model.Vehicle {
	return &model.Vehicle{
		Brand:            "Toyota",
		Model:            "Corolla 2022",
		PricePerDay:      100,
		VehicleType:      "sedan",
		Doors:            4,
		Passengers:       5,
		TransmissionType: "automatic",
		FuelType:         "gasoline",
		PlateNumbers:     []string{"34 ABC 123", "34-abc-124"},
	}
}

func TestCreateVehicleNormalizesPlates(t *testing.T) {
	repo := &mockVehicleRepo{}
	svc := newTestService(repo)

	vehicle := validVehicle()
	if err := svc.Create(context.Background(), vehicle); err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := []string{"34ABC123", "34ABC124"}
	if len(vehicle.PlateNumbers) != len(want) {
		t.Fatalf("plates = %v, want %v", vehicle.PlateNumbers, want)
	}
	for i := range want {
		if vehicle.PlateNumbers[i] != want[i] {
			t.Errorf("plate[%d] = %q, want %q", i, vehicle.PlateNumbers[i], want[i])
		}
	}
}

func TestCreateVehicleRejectsTakenPlate(t *testing.T) {
	repo := &mockVehicleRepo{
		findByPlatesFn: func(ctx context.Context, plates []string, excludeID string) ([]*model.Vehicle, error) {
			holder := validVehicle()
			holder.ID = "64a000000000000000000002"
			holder.PlateNumbers = []string{"34ABC123"}
			return []*model.Vehicle{holder}, nil
		},
	}
	svc := newTestService(repo)

	err := svc.Create(context.Background(), validVehicle())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeConflict)
	}
}

func TestCreateVehicleValidation(t *testing.T) {
	svc := newTestService(&mockVehicleRepo{})

	cases := []struct {
		name   string
		mutate func(*model.Vehicle)
	}{
		{"no plates", func(v *model.Vehicle) { v.PlateNumbers = nil }},
		{"bad type", func(v *model.Vehicle) { v.VehicleType = "boat" }},
		{"bad fuel", func(v *model.Vehicle) { v.FuelType = "coal" }},
		{"zero price", func(v *model.Vehicle) { v.PricePerDay = 0 }},
		{"too many doors", func(v *model.Vehicle) { v.Doors = 7 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vehicle := validVehicle()
			tc.mutate(vehicle)
			err := svc.Create(context.Background(), vehicle)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Fatalf("err = %v, want %s", err, apperrors.CodeValidation)
			}
		})
	}
}

func TestUpdateVehicleMergesPartialFields(t *testing.T) {
	existing := validVehicle()
	existing.ID = testVehicleID
	existing.PlateNumbers = []string{"34ABC123"}

	var saved *model.Vehicle
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
			v := *existing
			return &v, nil
		},
		updateFn: func(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error) {
			saved = vehicle
			return vehicle, nil
		},
	}
	svc := newTestService(repo)

	newPrice := 150.0
	updated, err := svc.Update(context.Background(), testVehicleID, &model.VehicleUpdate{
		PricePerDay: &newPrice,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if saved.PricePerDay != 150 {
		t.Errorf("price = %v, want 150", saved.PricePerDay)
	}
	if saved.Brand != existing.Brand || saved.Model != existing.Model {
		t.Errorf("untouched fields changed: %+v", saved)
	}
	if updated.PricePerDay != 150 {
		t.Errorf("returned price = %v, want 150", updated.PricePerDay)
	}
}

func TestGetByIDMapsErrors(t *testing.T) {
	repo := &mockVehicleRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return nil, vehicleserrors.ErrNotFound
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), testVehicleID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestGetAllValidatesDateRange(t *testing.T) {
	svc := newTestService(&mockVehicleRepo{})

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	cases := []struct {
		name   string
		filter *model.VehicleFilter
	}{
		{"start only", &model.VehicleFilter{StartDate: &start}},
		{"end only", &model.VehicleFilter{EndDate: &end}},
		{"inverted", &model.VehicleFilter{StartDate: &start, EndDate: &end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.GetAll(context.Background(), tc.filter, 10, 0)
			if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
				t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidInput)
			}
		})
	}
}

func TestDeleteVehicleNotFound(t *testing.T) {
	repo := &mockVehicleRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return vehicleserrors.ErrNotFound
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), testVehicleID)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeNotFound)
	}
}
