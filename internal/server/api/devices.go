package api

import (
	"net/http"
	"strings"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
)

type DevicesHandler struct {
	deviceRepo      *storage.DeviceRepository
	thresholdRepo   *storage.ThresholdRepository
	calibrationRepo *storage.CalibrationRepository
}

func NewDevicesHandler(
	deviceRepo *storage.DeviceRepository,
	thresholdRepo *storage.ThresholdRepository,
	calibrationRepo *storage.CalibrationRepository,
) *DevicesHandler {
	return &DevicesHandler{
		deviceRepo:      deviceRepo,
		thresholdRepo:   thresholdRepo,
		calibrationRepo: calibrationRepo,
	}
}

// List returns the device registry for the dashboard.
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceRepo.ListAll(r.Context())
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to load devices")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"devices": devices,
	})
}

// Threshold returns the configured alert thresholds for a device. Firmware
// polls this to decide temp_alert/hum_alert locally before uploading.
func (h *DevicesHandler) Threshold(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := queryDeviceID(w, r)
	if !ok {
		return
	}

	threshold, err := h.thresholdRepo.Get(r.Context(), deviceID)
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to load threshold")
		return
	}
	if threshold == nil {
		respondErrorJSON(w, http.StatusNotFound, "no threshold configured for device")
		return
	}

	respondJSON(w, http.StatusOK, models.ThresholdResponse{
		Status:   "success",
		TempHigh: threshold.TempHigh,
		TempLow:  threshold.TempLow,
		HumHigh:  threshold.HumHigh,
		HumLow:   threshold.HumLow,
	})
}

// Calibration returns the sensor offsets for a device.
func (h *DevicesHandler) Calibration(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := queryDeviceID(w, r)
	if !ok {
		return
	}

	calibration, err := h.calibrationRepo.Get(r.Context(), deviceID)
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to load calibration")
		return
	}
	if calibration == nil {
		respondErrorJSON(w, http.StatusNotFound, "no calibration configured for device")
		return
	}

	respondJSON(w, http.StatusOK, models.CalibrationResponse{
		DeviceID:   calibration.DeviceID,
		TempOffset: calibration.TempOffset,
		HumOffset:  calibration.HumOffset,
	})
}

func queryDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID := strings.TrimSpace(r.URL.Query().Get("device_id"))
	if deviceID == "" {
		respondErrorJSON(w, http.StatusBadRequest, "device_id is required")
		return "", false
	}
	return deviceID, true
}
