package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

// CreateTestUser creates a test user in the database with the given
// password hashed for real, so login paths can be exercised end to end.
func (tdb *TestDB) CreateTestUser(ctx context.Context, username, password, role string) *models.User {
	tdb.t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		tdb.t.Fatalf("Failed to hash test password: %v", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
		Email:    GenerateTestEmail(),
	}

	_, err = tdb.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, email)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, hash, user.Role, user.Email)
	if err != nil {
		tdb.t.Fatalf("Failed to create test user: %v", err)
	}

	user.PasswordHash = hash
	return user
}

// DeleteTestUser removes a test user and its OTP codes
func (tdb *TestDB) DeleteTestUser(ctx context.Context, userID uuid.UUID) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM otp_codes WHERE user_id = $1", userID)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
}

// CreateTestDevice registers a test device in the database
func (tdb *TestDB) CreateTestDevice(ctx context.Context, deviceID string) *models.Device {
	tdb.t.Helper()

	device := &models.Device{
		DeviceID:    deviceID,
		DeviceName:  "test " + deviceID,
		IPAddress:   "192.168.1.50",
		Status:      "active",
		AlertStatus: models.AlertStatusNormal,
	}

	_, err := tdb.DB.ExecContext(ctx, `
		INSERT INTO devices (device_id, device_name, ip_address, status, alert_status)
		VALUES ($1, $2, $3, $4, $5)
	`, device.DeviceID, device.DeviceName, device.IPAddress, device.Status, device.AlertStatus)
	if err != nil {
		tdb.t.Fatalf("Failed to create test device: %v", err)
	}

	return device
}

// DeleteTestDevice removes a test device and its readings
func (tdb *TestDB) DeleteTestDevice(ctx context.Context, deviceID string) {
	tdb.t.Helper()
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM readings WHERE device_id = $1", deviceID)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM thresholds WHERE device_id = $1", deviceID)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM calibrations WHERE device_id = $1", deviceID)
	_, _ = tdb.DB.ExecContext(ctx, "DELETE FROM devices WHERE device_id = $1", deviceID)
}

// CreateTestReading inserts a reading with a controlled arrival time, to
// set up debounce scenarios.
func (tdb *TestDB) CreateTestReading(ctx context.Context, deviceID string, temp, hum float64, arrivedAt time.Time) {
	tdb.t.Helper()

	_, err := tdb.DB.ExecContext(ctx, `
		INSERT INTO readings (device_id, temperature, humidity, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $4)
	`, deviceID, temp, hum, arrivedAt)
	if err != nil {
		tdb.t.Fatalf("Failed to create test reading: %v", err)
	}
}

// GenerateTestEmail generates a unique test email
func GenerateTestEmail() string {
	return fmt.Sprintf("test-%s@example.com", uuid.New().String()[:8])
}

// GenerateTestDeviceID generates a unique device identifier
func GenerateTestDeviceID() string {
	return "test-sensor-" + uuid.New().String()[:8]
}

// GenerateTestUsername generates a unique username
func GenerateTestUsername() string {
	return "testuser-" + uuid.New().String()[:8]
}
