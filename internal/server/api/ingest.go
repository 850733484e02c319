package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/pkg/models"
)

type IngestHandler struct {
	ingestService *services.IngestService
}

func NewIngestHandler(ingestService *services.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
	}
}

// SubmitReading accepts a device upload as JSON or, as a fallback for older
// firmware and manual testing, form-encoded fields.
func (h *IngestHandler) SubmitReading(w http.ResponseWriter, r *http.Request) {
	req, err := parseSubmitRequest(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, models.SubmitReadingResponse{
			Status: "error",
			Msg:    "invalid request body",
		})
		return
	}

	result, err := h.ingestService.Submit(r.Context(), req, remoteIP(r))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			respondJSON(w, http.StatusBadRequest, models.SubmitReadingResponse{
				Status: "error",
				Msg:    "Missing required parameters",
			})
			return
		}
		respondJSON(w, http.StatusInternalServerError, models.SubmitReadingResponse{
			Status: "error",
			Msg:    "failed to store reading",
		})
		return
	}

	if result.Skipped {
		respondJSON(w, http.StatusOK, models.SubmitReadingResponse{
			Status: "skipped",
			Msg:    "Too soon since last entry",
		})
		return
	}

	reading := result.Reading
	respondJSON(w, http.StatusOK, models.SubmitReadingResponse{
		Status:      "success",
		DeviceID:    reading.DeviceID,
		Temperature: &reading.Temperature,
		Humidity:    &reading.Humidity,
		TempAlert:   &reading.TempAlert,
		HumAlert:    &reading.HumAlert,
		Timestamp:   reading.RecordedAt.Format("2006-01-02 15:04:05"),
	})
}

// AlertStatus reports the device's current alert state, set by its most
// recent accepted reading.
func (h *IngestHandler) AlertStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimSpace(r.URL.Query().Get("device_id"))
	if deviceID == "" {
		respondJSON(w, http.StatusBadRequest, models.SubmitReadingResponse{
			Status: "error",
			Msg:    "Missing device_id",
		})
		return
	}

	alertStatus, err := h.ingestService.GetAlertStatus(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, models.SubmitReadingResponse{
				Status: "error",
				Msg:    "Device not found",
			})
			return
		}
		respondJSON(w, http.StatusInternalServerError, models.SubmitReadingResponse{
			Status: "error",
			Msg:    "failed to look up device",
		})
		return
	}

	respondJSON(w, http.StatusOK, models.AlertStatusResponse{
		Status:      "success",
		AlertStatus: alertStatus,
	})
}

func parseSubmitRequest(r *http.Request) (*models.SubmitReadingRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		return parseSubmitForm(r)
	}

	var req models.SubmitReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func parseSubmitForm(r *http.Request) (*models.SubmitReadingRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req := &models.SubmitReadingRequest{
		DeviceID:   r.PostFormValue("device_id"),
		DeviceName: r.PostFormValue("device_name"),
		Date:       r.PostFormValue("date"),
		IPAddress:  r.PostFormValue("ip_address"),
	}

	if v := r.PostFormValue("temperature"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Temperature = &f
		}
	}
	if v := r.PostFormValue("humidity"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Humidity = &f
		}
	}
	req.TempAlert = models.FlexiBool(formBool(r.PostFormValue("temp_alert")))
	req.HumAlert = models.FlexiBool(formBool(r.PostFormValue("hum_alert")))

	return req, nil
}

func formBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
