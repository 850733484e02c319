package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thermolog/thermolog/pkg/models"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert inserts the device or, if it already exists, refreshes the mutable
// fields. device_id never changes once created.
func (r *DeviceRepository) Upsert(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (device_id, device_name, ip_address, status, alert_status)
		VALUES ($1, $2, $3, 'active', $4)
		ON CONFLICT (device_id) DO UPDATE SET
			device_name = EXCLUDED.device_name,
			ip_address = EXCLUDED.ip_address,
			alert_status = EXCLUDED.alert_status,
			updated_at = NOW()
		RETURNING created_at, updated_at, status
	`
	return r.db.QueryRowContext(ctx, query,
		device.DeviceID, device.DeviceName, device.IPAddress, device.AlertStatus,
	).Scan(&device.CreatedAt, &device.UpdatedAt, &device.Status)
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	query := `SELECT * FROM devices WHERE device_id = $1`
	err := r.db.GetContext(ctx, &device, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) ListAll(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	query := `SELECT * FROM devices ORDER BY device_id`
	err := r.db.SelectContext(ctx, &devices, query)
	return devices, err
}

func (r *DeviceRepository) GetAlertStatus(ctx context.Context, deviceID string) (string, error) {
	var alertStatus string
	query := `SELECT alert_status FROM devices WHERE device_id = $1`
	err := r.db.GetContext(ctx, &alertStatus, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return alertStatus, nil
}
