package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/services"
	"github.com/username/finboard/backend/src/utils"
)

// AnnouncementHandler fronts the exchange proxy so the browser never calls
// the exchange cross-origin.
type AnnouncementHandler struct {
	announcementService services.AnnouncementService
}

func NewAnnouncementHandler(service services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: service}
}

// HandleAnnouncements serves POST /cse.
func (h *AnnouncementHandler) HandleAnnouncements(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FromDate string `json:"fromDate"`
		ToDate   string `json:"toDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	payload, err := h.announcementService.CompanyAnnouncements(r.Context(), body.FromDate, body.ToDate)
	if err != nil {
		sendAnnouncementError(w, "Error fetching announcements", err)
		return
	}
	writeUpstreamJSON(w, payload)
}

// HandleAnnouncementDetails serves POST /cse/details.
func (h *AnnouncementHandler) HandleAnnouncementDetails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AnnouncementID string `json:"announcementId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	payload, err := h.announcementService.AnnouncementDetails(r.Context(), body.AnnouncementID)
	if err != nil {
		sendAnnouncementError(w, "Error fetching announcement details", err)
		return
	}
	writeUpstreamJSON(w, payload)
}

// writeUpstreamJSON relays the exchange's JSON body as-is.
func writeUpstreamJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		logger.L.Error("Error writing proxied response", "error", err)
	}
}

func sendAnnouncementError(w http.ResponseWriter, logMsg string, err error) {
	if errors.Is(err, services.ErrInvalidInput) {
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Upstream failures surface as 502 so the client can distinguish "the
	// exchange is down" from our own errors.
	logger.L.Error(logMsg, "error", err)
	utils.SendJSONError(w, "Exchange is unreachable. Please try again later.", http.StatusBadGateway)
}
