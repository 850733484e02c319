package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thermolog/thermolog/pkg/models"
)

type CalibrationRepository struct {
	db *DB
}

func NewCalibrationRepository(db *DB) *CalibrationRepository {
	return &CalibrationRepository{db: db}
}

func (r *CalibrationRepository) Get(ctx context.Context, deviceID string) (*models.Calibration, error) {
	var calibration models.Calibration
	query := `SELECT * FROM calibrations WHERE device_id = $1`
	err := r.db.GetContext(ctx, &calibration, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &calibration, nil
}

func (r *CalibrationRepository) Upsert(ctx context.Context, calibration *models.Calibration) error {
	query := `
		INSERT INTO calibrations (device_id, temp_offset, hum_offset)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			temp_offset = EXCLUDED.temp_offset,
			hum_offset = EXCLUDED.hum_offset,
			updated_at = NOW()
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		calibration.DeviceID, calibration.TempOffset, calibration.HumOffset,
	).Scan(&calibration.UpdatedAt)
}
