package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/internal/testutil"
	"github.com/thermolog/thermolog/pkg/models"
)

func TestReadingRepository_InsertIfQuiet(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	repos := tdb.Repositories()
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)
	tdb.CreateTestDevice(ctx, deviceID)

	reading := &models.Reading{
		DeviceID:    deviceID,
		Temperature: 23.1,
		Humidity:    58.0,
		RecordedAt:  time.Now().UTC(),
	}
	inserted, err := repos.Readings.InsertIfQuiet(ctx, reading, 30*time.Second)
	if err != nil {
		t.Fatalf("first InsertIfQuiet failed: %v", err)
	}
	if !inserted {
		t.Fatal("first insert must succeed")
	}
	if reading.ID == 0 || reading.CreatedAt.IsZero() {
		t.Fatal("expected id and created_at back from the insert")
	}

	// Immediate second insert hits the lookback guard
	again := &models.Reading{
		DeviceID:    deviceID,
		Temperature: 23.2,
		Humidity:    58.1,
		RecordedAt:  time.Now().UTC(),
	}
	inserted, err = repos.Readings.InsertIfQuiet(ctx, again, 30*time.Second)
	if err != nil {
		t.Fatalf("second InsertIfQuiet failed: %v", err)
	}
	if inserted {
		t.Fatal("insert within the interval must be suppressed")
	}

	// A zero interval disables the guard
	inserted, err = repos.Readings.InsertIfQuiet(ctx, again, 0)
	if err != nil {
		t.Fatalf("third InsertIfQuiet failed: %v", err)
	}
	if !inserted {
		t.Fatal("insert with zero interval must succeed")
	}
}

func TestReadingRepository_LatestArrival(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	repos := tdb.Repositories()
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)
	tdb.CreateTestDevice(ctx, deviceID)

	ts, err := repos.Readings.LatestArrival(ctx, deviceID)
	if err != nil {
		t.Fatalf("LatestArrival failed: %v", err)
	}
	if ts != nil {
		t.Fatal("expected nil for a device with no readings")
	}

	older := time.Now().UTC().Add(-2 * time.Minute)
	newer := time.Now().UTC().Add(-1 * time.Minute)
	tdb.CreateTestReading(ctx, deviceID, 20, 50, older)
	tdb.CreateTestReading(ctx, deviceID, 21, 51, newer)

	ts, err = repos.Readings.LatestArrival(ctx, deviceID)
	if err != nil {
		t.Fatalf("LatestArrival failed: %v", err)
	}
	if ts == nil {
		t.Fatal("expected a timestamp")
	}
	if ts.Sub(newer).Abs() > time.Second {
		t.Errorf("expected the newest arrival, got %v", ts)
	}
}

func TestReadingRepository_ListPageAndSummary(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	repos := tdb.Repositories()
	deviceID := testutil.GenerateTestDeviceID()
	defer tdb.DeleteTestDevice(ctx, deviceID)
	tdb.CreateTestDevice(ctx, deviceID)

	base := time.Now().UTC().Add(-time.Hour)
	temps := []float64{20, 22, 24}
	for i, temp := range temps {
		tdb.CreateTestReading(ctx, deviceID, temp, 50+float64(i), base.Add(time.Duration(i)*time.Minute))
	}

	filter := storage.ReadingFilter{DeviceID: deviceID}

	readings, total, err := repos.Readings.ListPage(ctx, filter, 2, 0)
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings on the page, got %d", len(readings))
	}
	// Newest first
	if readings[0].Temperature != 24 {
		t.Errorf("expected newest reading first, got temp %v", readings[0].Temperature)
	}
	if readings[0].DeviceName == "" {
		t.Error("expected device metadata joined in")
	}

	summary, err := repos.Readings.Summary(ctx, filter)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.MinTemp != 20 || summary.MaxTemp != 24 {
		t.Errorf("min/max mismatch: %v / %v", summary.MinTemp, summary.MaxTemp)
	}
	if summary.AvgTemp != 22 {
		t.Errorf("expected avg 22, got %v", summary.AvgTemp)
	}
}

func TestReadingRepository_SummaryEmpty(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	repos := tdb.Repositories()

	summary, err := repos.Readings.Summary(context.Background(), storage.ReadingFilter{DeviceID: "no-such-device"})
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Count != 0 {
		t.Errorf("expected zero count, got %d", summary.Count)
	}
	if summary.AvgTemp != 0 || summary.MinTemp != 0 {
		t.Error("expected zeroed aggregates for an empty set")
	}
}
