package repository

import (
	"context"
	"fmt"
	"time"

	bookingsrepo "fleetbook/internal/bookings/repository"
	"fleetbook/pkg/config"
	"fleetbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReportRepository rolls up confirmed bookings. Reports read the same
// Bookings collection the booking core writes; there is no separate store.
type ReportRepository interface {
	MonthlyIncome(ctx context.Context, year int) ([]*model.MonthlyIncome, error)
	TopRenters(ctx context.Context, limit int) ([]*model.RenterStats, error)
}

type mongoReportRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReportRepository(cfg *config.Config) ReportRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReportRepository{
		cfg:        cfg,
		collection: db.Collection(bookingsrepo.CollectionName),
	}
}

func (r *mongoReportRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// MonthlyIncome groups confirmed bookings of one calendar year by the month
// their rental starts and sums the booked revenue.
func (r *mongoReportRepository) MonthlyIncome(ctx context.Context, year int) ([]*model.MonthlyIncome, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"status":     model.StatusConfirmed,
			"start_date": bson.M{"$gte": from, "$lt": to},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$month": "$start_date"},
			"income":   bson.M{"$sum": "$total_price"},
			"bookings": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly income: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.MonthlyIncome
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode monthly income: %w", err)
	}

	return results, nil
}

// TopRenters ranks users by confirmed booking count, spend as tie-breaker.
func (r *mongoReportRepository) TopRenters(ctx context.Context, limit int) ([]*model.RenterStats, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": model.StatusConfirmed}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$user_id",
			"bookings":    bson.M{"$sum": 1},
			"total_spent": bson.M{"$sum": "$total_price"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "bookings", Value: -1},
			{Key: "total_spent", Value: -1},
		}}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top renters: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.RenterStats
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode top renters: %w", err)
	}

	return results, nil
}
