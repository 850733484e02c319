package models

import "time"

// Reading is an append-only sensor sample. RecordedAt is the echoed
// timestamp (client-supplied or server time); CreatedAt is server arrival
// time and is the only input to debounce decisions.
type Reading struct {
	ID          int64     `json:"id" db:"id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Temperature float64   `json:"temperature" db:"temperature"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	TempAlert   bool      `json:"temp_alert" db:"temp_alert"`
	HumAlert    bool      `json:"hum_alert" db:"hum_alert"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
	IPAddress   string    `json:"ip_address" db:"ip_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DeviceReading is a reading joined with its device row, for the
// latest-per-device dashboard query.
type DeviceReading struct {
	Reading
	DeviceName  string `json:"device_name" db:"device_name"`
	AlertStatus string `json:"alert_status" db:"alert_status"`
}

// ReadingSummary holds aggregate stats over a filtered set of readings.
type ReadingSummary struct {
	Count       int64   `json:"count" db:"count"`
	AvgTemp     float64 `json:"avg_temp" db:"avg_temp"`
	MinTemp     float64 `json:"min_temp" db:"min_temp"`
	MaxTemp     float64 `json:"max_temp" db:"max_temp"`
	AvgHumidity float64 `json:"avg_humidity" db:"avg_humidity"`
}
