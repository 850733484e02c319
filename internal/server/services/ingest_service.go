package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

// Timestamp layout sensor firmware sends ("2006-01-02 15:04:05").
const readingTimeLayout = "2006-01-02 15:04:05"

// IngestService validates, debounces and persists device readings.
type IngestService struct {
	deviceRepo  *storage.DeviceRepository
	readingRepo *storage.ReadingRepository
	minInterval time.Duration
	loc         *time.Location
}

func NewIngestService(
	deviceRepo *storage.DeviceRepository,
	readingRepo *storage.ReadingRepository,
	minInterval time.Duration,
	loc *time.Location,
) *IngestService {
	return &IngestService{
		deviceRepo:  deviceRepo,
		readingRepo: readingRepo,
		minInterval: minInterval,
		loc:         loc,
	}
}

// SubmitResult reports either a stored reading or a debounce skip.
type SubmitResult struct {
	Skipped bool
	Reading *models.Reading
}

// Submit runs the ingestion pipeline for one reading.
//
// The device upsert and the reading insert are two separate writes: if the
// reading insert fails after the device row was updated, the call reports
// failure but the device row stays updated. The reading insert carries its
// own lookback guard, so two near-simultaneous submissions for the same
// device cannot both pass the debounce check.
func (s *IngestService) Submit(ctx context.Context, req *models.SubmitReadingRequest, remoteIP string) (*SubmitResult, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: missing device_id", ErrValidation)
	}
	if !utils.IsValidDeviceID(deviceID) {
		return nil, fmt.Errorf("%w: invalid device_id format", ErrValidation)
	}
	if req.Temperature == nil || req.Humidity == nil {
		return nil, fmt.Errorf("%w: missing temperature or humidity", ErrValidation)
	}

	ipAddress := strings.TrimSpace(req.IPAddress)
	if ipAddress == "" {
		ipAddress = remoteIP
	}

	now := time.Now().In(s.loc)
	recordedAt := s.parseClientTime(req.Date, now)

	// Debounce: the lookback compares against server arrival time, never
	// against client-supplied timestamps.
	last, err := s.readingRepo.LatestArrival(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to check last reading: %w", err)
	}
	if last != nil && time.Since(*last) < s.minInterval {
		return &SubmitResult{Skipped: true}, nil
	}

	alertStatus := models.AlertStatusNormal
	if req.TempAlert.Bool() || req.HumAlert.Bool() {
		alertStatus = models.AlertStatusAlert
	}

	device := &models.Device{
		DeviceID:    deviceID,
		DeviceName:  strings.TrimSpace(req.DeviceName),
		IPAddress:   ipAddress,
		AlertStatus: alertStatus,
	}
	if err := s.deviceRepo.Upsert(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to upsert device: %w", err)
	}

	reading := &models.Reading{
		DeviceID:    deviceID,
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
		TempAlert:   req.TempAlert.Bool(),
		HumAlert:    req.HumAlert.Bool(),
		RecordedAt:  recordedAt,
		IPAddress:   ipAddress,
	}
	inserted, err := s.readingRepo.InsertIfQuiet(ctx, reading, s.minInterval)
	if err != nil {
		// The device row was already updated; accepted inconsistency.
		log.Printf("Reading insert failed for device %s after device upsert: %v", deviceID, err)
		return nil, fmt.Errorf("failed to store reading: %w", err)
	}
	if !inserted {
		// A concurrent submission won the race inside the insert guard.
		return &SubmitResult{Skipped: true}, nil
	}

	return &SubmitResult{Reading: reading}, nil
}

// GetAlertStatus returns the current alert state for a device.
func (s *IngestService) GetAlertStatus(ctx context.Context, deviceID string) (string, error) {
	alertStatus, err := s.deviceRepo.GetAlertStatus(ctx, deviceID)
	if err != nil {
		return "", fmt.Errorf("failed to look up device: %w", err)
	}
	if alertStatus == "" {
		return "", ErrNotFound
	}
	return alertStatus, nil
}

// parseClientTime honors a parseable client timestamp for display purposes
// only; anything else falls back to server time in the configured zone.
func (s *IngestService) parseClientTime(date string, now time.Time) time.Time {
	date = strings.TrimSpace(date)
	if date == "" {
		return now
	}
	if ts, err := time.ParseInLocation(readingTimeLayout, date, s.loc); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, date); err == nil {
		return ts.In(s.loc)
	}
	return now
}
