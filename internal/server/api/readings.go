package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/internal/server/storage"
)

type ReadingsHandler struct {
	readingService *services.ReadingService
}

func NewReadingsHandler(readingService *services.ReadingService) *ReadingsHandler {
	return &ReadingsHandler{
		readingService: readingService,
	}
}

// Latest returns the most recent reading for every device, for the
// dashboard overview grid.
func (h *ReadingsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	readings, err := h.readingService.LatestPerDevice(r.Context())
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"readings": readings,
	})
}

// History returns a page of readings, optionally scoped to one device and
// to the current day or week.
func (h *ReadingsHandler) History(w http.ResponseWriter, r *http.Request) {
	filter, ok := readingFilter(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 0)

	result, err := h.readingService.History(r.Context(), filter, page, perPage)
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Summary returns aggregate stats over the filtered readings.
func (h *ReadingsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, ok := readingFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.readingService.Summary(r.Context(), filter)
	if err != nil {
		respondErrorJSON(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func readingFilter(w http.ResponseWriter, r *http.Request) (storage.ReadingFilter, bool) {
	filter := storage.ReadingFilter{
		DeviceID: strings.TrimSpace(r.URL.Query().Get("device_id")),
		Period:   strings.TrimSpace(r.URL.Query().Get("period")),
	}

	switch filter.Period {
	case "", "day", "week":
	default:
		respondErrorJSON(w, http.StatusBadRequest, "period must be day or week")
		return storage.ReadingFilter{}, false
	}

	return filter, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
