package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingsrepo "fleetbook/internal/bookings/repository"
	vehicleserrors "fleetbook/internal/vehicles/errors"
	"fleetbook/pkg/config"
	mongotx "fleetbook/pkg/db/mongo"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Vehicles"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)
	FindAll(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, error)
	Count(ctx context.Context, filter *model.VehicleFilter) (int64, error)
	FindByPlates(ctx context.Context, plates []string, excludeID string) ([]*model.Vehicle, error)
	Update(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoVehicleRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoVehicleRepository(cfg *config.Config) VehicleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoVehicleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	var vehicle model.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vehicleserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return &vehicle, nil
}

// matchStage builds the plain attribute filters of a search. Date-range
// availability is handled separately because it needs a lookup.
func matchStage(filter *model.VehicleFilter) bson.M {
	match := bson.M{}
	if filter == nil {
		return match
	}

	if len(filter.VehicleTypes) > 0 {
		match["vehicle_type"] = bson.M{"$in": filter.VehicleTypes}
	}
	if filter.FuelType != "" {
		match["fuel_type"] = filter.FuelType
	}
	if filter.TransmissionType != "" {
		match["transmission_type"] = filter.TransmissionType
	}
	if filter.Passengers > 0 {
		match["passengers"] = bson.M{"$gte": filter.Passengers}
	}

	return match
}

// searchPipeline assembles the vehicle search aggregation. When a date range
// is present, each vehicle is joined against its non-cancelled bookings that
// overlap the range, and only vehicles with at least one unbooked plate
// survive. Bookings store vehicle_id as the hex string of the vehicle _id.
func searchPipeline(filter *model.VehicleFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: matchStage(filter)}},
	}

	if filter == nil || filter.StartDate == nil || filter.EndDate == nil {
		return pipeline
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": bookingsrepo.CollectionName,
			"let":  bson.M{"vid": bson.M{"$toString": "$_id"}},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$and": []bson.M{
					{"$eq": []any{"$vehicle_id", "$$vid"}},
					{"$ne": []any{"$status", model.StatusCancelled}},
					{"$lt": []any{"$start_date", *filter.EndDate}},
					{"$gt": []any{"$end_date", *filter.StartDate}},
				}}}},
			},
			"as": "conflicts",
		}}},
		bson.D{{Key: "$match", Value: bson.M{
			"$expr": bson.M{"$gt": []any{
				bson.M{"$size": "$plate_numbers"},
				bson.M{"$size": bson.M{"$setUnion": []any{"$conflicts.plate_number", []any{}}}},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"conflicts": 0}}},
	)

	return pipeline
}

func (r *mongoVehicleRepository) FindAll(ctx context.Context, filter *model.VehicleFilter, limit int, offset int64) ([]*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := searchPipeline(filter)
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "brand", Value: 1}, {Key: "model", Value: 1}}}},
		bson.D{{Key: "$skip", Value: offset}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to search vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*model.Vehicle
	if err = cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *mongoVehicleRepository) Count(ctx context.Context, filter *model.VehicleFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := append(searchPipeline(filter), bson.D{{Key: "$count", Value: "total"}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode vehicle count: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}

// FindByPlates returns vehicles holding any of the given plates, excluding the
// vehicle being edited. Backs the plate-uniqueness pre-check; the unique index
// on plate_numbers is the hard guarantee underneath.
func (r *mongoVehicleRepository) FindByPlates(ctx context.Context, plates []string, excludeID string) ([]*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"plate_numbers": bson.M{"$in": plates}}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicles by plates: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*model.Vehicle
	if err = cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *mongoVehicleRepository) Update(ctx context.Context, id string, vehicle *model.Vehicle) (*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	vehicle.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{
		"$set": bson.M{
			"brand":             vehicle.Brand,
			"model":             vehicle.Model,
			"image":             vehicle.Image,
			"price_per_day":     vehicle.PricePerDay,
			"vehicle_type":      vehicle.VehicleType,
			"doors":             vehicle.Doors,
			"passengers":        vehicle.Passengers,
			"transmission_type": vehicle.TransmissionType,
			"fuel_type":         vehicle.FuelType,
			"plate_numbers":     vehicle.PlateNumbers,
			"updated_at":        vehicle.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Vehicle
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, vehicleserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	return &updated, nil
}

func (r *mongoVehicleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.DeletedCount == 0 {
		return vehicleserrors.ErrNotFound
	}

	return nil
}

func (r *mongoVehicleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
