package models

import "time"

const (
	AlertStatusNormal = "normal"
	AlertStatusAlert  = "alert"
)

// Device is the sensor registry row, upserted on every accepted reading.
// DeviceID is the natural key and is immutable once created.
type Device struct {
	DeviceID    string    `json:"device_id" db:"device_id"`
	DeviceName  string    `json:"device_name" db:"device_name"`
	IPAddress   string    `json:"ip_address" db:"ip_address"`
	Status      string    `json:"status" db:"status"`
	AlertStatus string    `json:"alert_status" db:"alert_status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Threshold struct {
	DeviceID  string    `json:"device_id" db:"device_id"`
	TempHigh  float64   `json:"temp_high" db:"temp_high"`
	TempLow   float64   `json:"temp_low" db:"temp_low"`
	HumHigh   float64   `json:"hum_high" db:"hum_high"`
	HumLow    float64   `json:"hum_low" db:"hum_low"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Calibration struct {
	DeviceID   string    `json:"device_id" db:"device_id"`
	TempOffset float64   `json:"temp_offset" db:"temp_offset"`
	HumOffset  float64   `json:"hum_offset" db:"hum_offset"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
