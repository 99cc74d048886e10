package service

import (
	"context"

	"fleetbook/internal/reports/repository"
	"fleetbook/pkg/clock"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
)

const (
	// DefaultTopRenters bounds the leaderboard when the caller does not ask
	// for a specific size.
	DefaultTopRenters = 10
	MaxTopRenters     = 100
)

type ReportService interface {
	MonthlyIncome(ctx context.Context, year int) ([]*model.MonthlyIncome, error)
	TopRenters(ctx context.Context, limit int) ([]*model.RenterStats, error)
}

type reportService struct {
	repo  repository.ReportRepository
	clock clock.Clock
	cfg   *config.Config
}

func NewReportService(repo repository.ReportRepository, clk clock.Clock, cfg *config.Config) ReportService {
	return &reportService{
		repo:  repo,
		clock: clk,
		cfg:   cfg,
	}
}

func (s *reportService) MonthlyIncome(ctx context.Context, year int) ([]*model.MonthlyIncome, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}
	if year < 2000 || year > s.clock.Now().Year()+1 {
		return nil, apperrors.InvalidInput("Year is out of range")
	}

	results, err := s.repo.MonthlyIncome(ctx, year)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate monthly income", "year", year, "error", err)
		return nil, apperrors.Internal("Failed to build monthly income report", err)
	}

	return results, nil
}

func (s *reportService) TopRenters(ctx context.Context, limit int) ([]*model.RenterStats, error) {
	if limit <= 0 {
		limit = DefaultTopRenters
	}
	if limit > MaxTopRenters {
		limit = MaxTopRenters
	}

	results, err := s.repo.TopRenters(ctx, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate top renters", "limit", limit, "error", err)
		return nil, apperrors.Internal("Failed to build top renters report", err)
	}

	return results, nil
}
