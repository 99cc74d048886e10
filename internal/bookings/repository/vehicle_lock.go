package repository

import (
	"context"
	"time"

	"fleetbook/pkg/config"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Vehicle_locks"

// VehicleLockRepository provides operations for advisory admission locks
type VehicleLockRepository interface {
	Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoVehicleLockRepository struct {
	collection *mongo.Collection
}

func NewVehicleLockRepository(cfg *config.Config) VehicleLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoVehicleLockRepository) Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoVehicleLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
