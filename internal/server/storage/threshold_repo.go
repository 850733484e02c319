package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thermolog/thermolog/pkg/models"
)

type ThresholdRepository struct {
	db *DB
}

func NewThresholdRepository(db *DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

func (r *ThresholdRepository) Get(ctx context.Context, deviceID string) (*models.Threshold, error) {
	var threshold models.Threshold
	query := `SELECT * FROM thresholds WHERE device_id = $1`
	err := r.db.GetContext(ctx, &threshold, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &threshold, nil
}

func (r *ThresholdRepository) Upsert(ctx context.Context, threshold *models.Threshold) error {
	query := `
		INSERT INTO thresholds (device_id, temp_high, temp_low, hum_high, hum_low)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id) DO UPDATE SET
			temp_high = EXCLUDED.temp_high,
			temp_low = EXCLUDED.temp_low,
			hum_high = EXCLUDED.hum_high,
			hum_low = EXCLUDED.hum_low,
			updated_at = NOW()
		RETURNING updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		threshold.DeviceID, threshold.TempHigh, threshold.TempLow,
		threshold.HumHigh, threshold.HumLow,
	).Scan(&threshold.UpdatedAt)
}
