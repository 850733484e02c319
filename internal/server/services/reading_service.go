package services

import (
	"context"
	"fmt"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

// ReadingService serves the dashboard's read contract: latest-per-device,
// paginated history and aggregate summaries.
type ReadingService struct {
	readingRepo *storage.ReadingRepository
}

func NewReadingService(readingRepo *storage.ReadingRepository) *ReadingService {
	return &ReadingService{readingRepo: readingRepo}
}

func (s *ReadingService) LatestPerDevice(ctx context.Context) ([]models.DeviceReading, error) {
	readings, err := s.readingRepo.LatestPerDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	return readings, nil
}

func (s *ReadingService) History(ctx context.Context, filter storage.ReadingFilter, page, perPage int) (*models.ReadingPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	offset := (page - 1) * perPage
	readings, total, err := s.readingRepo.ListPage(ctx, filter, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	return &models.ReadingPage{
		Readings:   readings,
		Page:       page,
		PerPage:    perPage,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

func (s *ReadingService) Summary(ctx context.Context, filter storage.ReadingFilter) (*models.ReadingSummary, error) {
	summary, err := s.readingRepo.Summary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	return summary, nil
}
