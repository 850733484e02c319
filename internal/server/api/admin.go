package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
)

type AdminHandler struct {
	userService     *services.UserService
	thresholdRepo   *storage.ThresholdRepository
	calibrationRepo *storage.CalibrationRepository
}

func NewAdminHandler(
	userService *services.UserService,
	thresholdRepo *storage.ThresholdRepository,
	calibrationRepo *storage.CalibrationRepository,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		thresholdRepo:   thresholdRepo,
		calibrationRepo: calibrationRepo,
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"users":  users,
	})
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondErrorJSON(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUsernameTaken):
			respondErrorJSON(w, http.StatusConflict, "username already exists")
		default:
			respondErrorJSON(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			respondErrorJSON(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotFound):
			respondErrorJSON(w, http.StatusNotFound, "user not found")
		default:
			respondErrorJSON(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	session := GetSession(r)
	if session == nil {
		respondUnauthorized(w, "missing session")
		return
	}

	if err := h.userService.Delete(r.Context(), id, session.UserID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfDelete):
			respondErrorJSON(w, http.StatusBadRequest, "cannot delete your own account")
		case errors.Is(err, services.ErrNotFound):
			respondErrorJSON(w, http.StatusNotFound, "user not found")
		default:
			respondErrorJSON(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// SetThreshold upserts the alert thresholds a device polls before deciding
// its alert flags.
func (h *AdminHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathDeviceID(w, r)
	if !ok {
		return
	}

	var req models.SetThresholdRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TempHigh < req.TempLow || req.HumHigh < req.HumLow {
		respondErrorJSON(w, http.StatusBadRequest, "high thresholds must not be below low thresholds")
		return
	}

	threshold := &models.Threshold{
		DeviceID: deviceID,
		TempHigh: req.TempHigh,
		TempLow:  req.TempLow,
		HumHigh:  req.HumHigh,
		HumLow:   req.HumLow,
	}
	if err := h.thresholdRepo.Upsert(r.Context(), threshold); err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to save threshold")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *AdminHandler) SetCalibration(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathDeviceID(w, r)
	if !ok {
		return
	}

	var req models.SetCalibrationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	calibration := &models.Calibration{
		DeviceID:   deviceID,
		TempOffset: req.TempOffset,
		HumOffset:  req.HumOffset,
	}
	if err := h.calibrationRepo.Upsert(r.Context(), calibration); err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to save calibration")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func pathDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID := chi.URLParam(r, "device_id")
	if deviceID == "" {
		respondErrorJSON(w, http.StatusBadRequest, "device_id is required")
		return "", false
	}
	return deviceID, true
}
