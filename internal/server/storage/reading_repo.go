package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thermolog/thermolog/pkg/models"
)

type ReadingRepository struct {
	db *DB
}

func NewReadingRepository(db *DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// ReadingFilter narrows history and summary queries.
type ReadingFilter struct {
	DeviceID string
	Period   string // "", "day" or "week"
}

// LatestArrival returns the arrival time of the most recent reading for a
// device, or nil if the device has none. Arrival time is server-assigned,
// so client-supplied timestamps cannot game the debounce.
func (r *ReadingRepository) LatestArrival(ctx context.Context, deviceID string) (*time.Time, error) {
	var ts time.Time
	query := `SELECT created_at FROM readings WHERE device_id = $1 ORDER BY created_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &ts, query, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ts, nil
}

// InsertIfQuiet appends the reading unless another reading for the device
// arrived within minInterval. The guard runs inside the insert statement so
// two concurrent submissions cannot both pass the lookback check.
// Returns false when the insert was suppressed.
func (r *ReadingRepository) InsertIfQuiet(ctx context.Context, reading *models.Reading, minInterval time.Duration) (bool, error) {
	query := `
		INSERT INTO readings (device_id, temperature, humidity, temp_alert, hum_alert, recorded_at, ip_address)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM readings
			WHERE device_id = $1 AND created_at > NOW() - ($8 * interval '1 second')
		)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		reading.DeviceID, reading.Temperature, reading.Humidity,
		reading.TempAlert, reading.HumAlert, reading.RecordedAt,
		reading.IPAddress, minInterval.Seconds(),
	).Scan(&reading.ID, &reading.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LatestPerDevice returns the newest reading of every registered device,
// joined with the device row.
func (r *ReadingRepository) LatestPerDevice(ctx context.Context) ([]models.DeviceReading, error) {
	var readings []models.DeviceReading
	query := `
		SELECT DISTINCT ON (rd.device_id)
			rd.*, d.device_name, d.alert_status
		FROM readings rd
		JOIN devices d ON d.device_id = rd.device_id
		ORDER BY rd.device_id, rd.recorded_at DESC
	`
	err := r.db.SelectContext(ctx, &readings, query)
	return readings, err
}

// ListPage returns one page of history, newest first, plus the unfiltered
// total for pagination.
func (r *ReadingRepository) ListPage(ctx context.Context, filter ReadingFilter, limit, offset int) ([]models.DeviceReading, int64, error) {
	where, args := buildReadingWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM readings rd` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT rd.*, d.device_name, d.alert_status
		FROM readings rd
		JOIN devices d ON d.device_id = rd.device_id
		%s
		ORDER BY rd.recorded_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var readings []models.DeviceReading
	if err := r.db.SelectContext(ctx, &readings, query, args...); err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// Summary computes aggregate stats over the filtered readings.
func (r *ReadingRepository) Summary(ctx context.Context, filter ReadingFilter) (*models.ReadingSummary, error) {
	where, args := buildReadingWhere(filter)

	var summary models.ReadingSummary
	query := `
		SELECT
			COUNT(*) AS count,
			COALESCE(ROUND(AVG(rd.temperature)::numeric, 2), 0) AS avg_temp,
			COALESCE(MIN(rd.temperature), 0) AS min_temp,
			COALESCE(MAX(rd.temperature), 0) AS max_temp,
			COALESCE(ROUND(AVG(rd.humidity)::numeric, 2), 0) AS avg_humidity
		FROM readings rd` + where
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, err
	}
	return &summary, nil
}

func buildReadingWhere(filter ReadingFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.DeviceID != "" {
		args = append(args, filter.DeviceID)
		clauses = append(clauses, fmt.Sprintf("rd.device_id = $%d", len(args)))
	}

	switch filter.Period {
	case "day":
		clauses = append(clauses, "rd.recorded_at::date = CURRENT_DATE")
	case "week":
		clauses = append(clauses, "date_trunc('week', rd.recorded_at) = date_trunc('week', NOW())")
	}

	if len(clauses) == 0 {
		return "", args
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}
