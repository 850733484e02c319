package models

// Ingestion API types

// SubmitReadingRequest is the consolidated device upload schema. Alert
// flags accept 0/1 as well as true/false since older firmware sends ints.
type SubmitReadingRequest struct {
	DeviceID    string    `json:"device_id"`
	DeviceName  string    `json:"device_name"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	TempAlert   FlexiBool `json:"temp_alert"`
	HumAlert    FlexiBool `json:"hum_alert"`
	Date        string    `json:"date"`
	IPAddress   string    `json:"ip_address"`
}

type SubmitReadingResponse struct {
	Status      string   `json:"status"`
	DeviceID    string   `json:"device_id,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	TempAlert   *bool    `json:"temp_alert,omitempty"`
	HumAlert    *bool    `json:"hum_alert,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Msg         string   `json:"msg,omitempty"`
}

type AlertStatusResponse struct {
	Status      string `json:"status"`
	AlertStatus string `json:"alert_status"`
}

type ThresholdResponse struct {
	Status   string  `json:"status"`
	TempHigh float64 `json:"temp_high"`
	TempLow  float64 `json:"temp_low"`
	HumHigh  float64 `json:"hum_high"`
	HumLow   float64 `json:"hum_low"`
}

type CalibrationResponse struct {
	DeviceID   string  `json:"device_id"`
	TempOffset float64 `json:"temp_offset"`
	HumOffset  float64 `json:"hum_offset"`
}

// Auth API types

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status    string `json:"status"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	Status   string `json:"status"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Admin API types

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

type UpdateUserRequest struct {
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}

type SetThresholdRequest struct {
	TempHigh float64 `json:"temp_high"`
	TempLow  float64 `json:"temp_low"`
	HumHigh  float64 `json:"hum_high"`
	HumLow   float64 `json:"hum_low"`
}

type SetCalibrationRequest struct {
	TempOffset float64 `json:"temp_offset"`
	HumOffset  float64 `json:"hum_offset"`
}

// Reading query API types

type ReadingPage struct {
	Readings   []DeviceReading `json:"readings"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalRows  int64           `json:"total_rows"`
	TotalPages int             `json:"total_pages"`
}

// Error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}
