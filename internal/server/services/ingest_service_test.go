package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thermolog/thermolog/internal/testutil"
	"github.com/thermolog/thermolog/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

// Validation failures must surface before any storage access, so a
// zero-value service is enough for these cases.
func TestIngestService_Submit_Validation(t *testing.T) {
	service := &IngestService{loc: time.UTC}
	ctx := context.Background()

	cases := []struct {
		name string
		req  *models.SubmitReadingRequest
	}{
		{"missing device_id", &models.SubmitReadingRequest{
			Temperature: floatPtr(24), Humidity: floatPtr(60),
		}},
		{"whitespace device_id", &models.SubmitReadingRequest{
			DeviceID: "   ", Temperature: floatPtr(24), Humidity: floatPtr(60),
		}},
		{"malformed device_id", &models.SubmitReadingRequest{
			DeviceID: "bad id;", Temperature: floatPtr(24), Humidity: floatPtr(60),
		}},
		{"missing temperature", &models.SubmitReadingRequest{
			DeviceID: "sensor-01", Humidity: floatPtr(60),
		}},
		{"missing humidity", &models.SubmitReadingRequest{
			DeviceID: "sensor-01", Temperature: floatPtr(24),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Submit(ctx, tc.req, "10.0.0.1")
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestIngestService_ParseClientTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	service := &IngestService{loc: loc}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)

	ts := service.parseClientTime("2026-03-10 08:30:00", now)
	if ts.Hour() != 8 || ts.Minute() != 30 {
		t.Errorf("expected parsed wall clock 08:30, got %v", ts)
	}
	if ts.Location() != loc {
		t.Errorf("expected configured zone, got %v", ts.Location())
	}

	// RFC3339 fallback
	ts = service.parseClientTime("2026-03-10T01:30:00Z", now)
	if !ts.Equal(time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)) {
		t.Errorf("expected RFC3339 timestamp honored, got %v", ts)
	}

	// Garbage falls back to server time
	for _, bad := range []string{"", "yesterday", "10/03/2026"} {
		if got := service.parseClientTime(bad, now); !got.Equal(now) {
			t.Errorf("parseClientTime(%q) = %v, want server now", bad, got)
		}
	}
}

func setupIngestService(t *testing.T, tdb *testutil.TestDB, minInterval time.Duration) *IngestService {
	t.Helper()
	repos := tdb.Repositories()
	return NewIngestService(repos.Devices, repos.Readings, minInterval, time.UTC)
}

func TestIngestService_Submit_StoresReadingAndDevice(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupIngestService(t, tdb, 30*time.Second)
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)

	result, err := service.Submit(ctx, &models.SubmitReadingRequest{
		DeviceID:    deviceID,
		DeviceName:  "lab sensor",
		Temperature: floatPtr(24.5),
		Humidity:    floatPtr(61.2),
		TempAlert:   models.FlexiBool(true),
	}, "10.0.0.9")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Skipped {
		t.Fatal("first reading must not be debounced")
	}
	if result.Reading.Temperature != 24.5 {
		t.Errorf("temperature mismatch: got %v", result.Reading.Temperature)
	}

	// Device row was upserted with alert state from the flags
	device, err := tdb.Repositories().Devices.GetByID(ctx, deviceID)
	if err != nil {
		t.Fatalf("Failed to load device: %v", err)
	}
	if device == nil {
		t.Fatal("expected device row to exist after first reading")
	}
	if device.AlertStatus != models.AlertStatusAlert {
		t.Errorf("expected alert status %q, got %q", models.AlertStatusAlert, device.AlertStatus)
	}
	if device.DeviceName != "lab sensor" {
		t.Errorf("device name mismatch: got %q", device.DeviceName)
	}
}

func TestIngestService_Submit_DebouncesRapidReadings(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupIngestService(t, tdb, 30*time.Second)
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)

	req := &models.SubmitReadingRequest{
		DeviceID:    deviceID,
		Temperature: floatPtr(22),
		Humidity:    floatPtr(55),
	}

	first, err := service.Submit(ctx, req, "10.0.0.9")
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if first.Skipped {
		t.Fatal("first reading must be accepted")
	}

	second, err := service.Submit(ctx, req, "10.0.0.9")
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if !second.Skipped {
		t.Fatal("reading within the interval must be skipped")
	}

	var count int
	if err := tdb.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM readings WHERE device_id = $1", deviceID); err != nil {
		t.Fatalf("Failed to count readings: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one stored reading, got %d", count)
	}
}

func TestIngestService_Submit_AcceptsAfterInterval(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service := setupIngestService(t, tdb, 30*time.Second)
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)

	tdb.CreateTestDevice(ctx, deviceID)
	// Pre-seed a reading that arrived just over the interval ago
	tdb.CreateTestReading(ctx, deviceID, 20, 50, time.Now().UTC().Add(-31*time.Second))

	result, err := service.Submit(ctx, &models.SubmitReadingRequest{
		DeviceID:    deviceID,
		Temperature: floatPtr(21),
		Humidity:    floatPtr(51),
	}, "10.0.0.9")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Skipped {
		t.Fatal("reading after the interval must be accepted")
	}
}

func TestIngestService_GetAlertStatus_UnknownDevice(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	service := setupIngestService(t, tdb, 30*time.Second)

	_, err := service.GetAlertStatus(context.Background(), "no-such-device")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
