package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/service"
	"github.com/cwrk-planet/presence-service/pkg/httputil"
	"github.com/cwrk-planet/presence-service/pkg/meetingid"
)

type Handler struct {
	svc *service.PresenceService
}

func NewHandler(svc *service.PresenceService) *Handler {
	return &Handler{svc: svc}
}

func meetingKey(r *http.Request) string {
	return meetingid.Encode(chi.URLParam(r, "meetingID"))
}

// POST /api/participants/{meetingID}/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ParticipantID == "" || req.ScreenName == "" {
		httputil.Error(w, http.StatusBadRequest, "participantUUID and screenName are required")
		return
	}

	h.svc.Heartbeat(meetingKey(r), req.ParticipantID, req.ScreenName, req.Role)
	httputil.OK(w, StatusResponse{Success: true})
}

// POST /api/participants/{meetingID}/sync
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Participants == nil {
		httputil.Error(w, http.StatusBadRequest, "participants array is required")
		return
	}

	records := make([]domain.RosterRecord, 0, len(req.Participants))
	for _, p := range req.Participants {
		records = append(records, domain.RosterRecord{
			ParticipantID: p.ParticipantID,
			ScreenName:    p.ScreenName,
			Role:          p.Role,
		})
	}

	updated := h.svc.SyncRoster(meetingKey(r), records)
	httputil.OK(w, StatusResponse{Success: true, Updated: updated})
}

// GET /api/participants/{meetingID}
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	roster := h.svc.ListActive(meetingKey(r))

	resp := SnapshotResponse{
		Participants:   make([]ParticipantItem, 0, len(roster.Participants)),
		UpdatedAt:      roster.AsOf.UnixMilli(),
		StaleAfterMS:   roster.StaleAfter.Milliseconds(),
		WebhookTracked: roster.WebhookTracked,
	}
	for _, p := range roster.Participants {
		resp.Participants = append(resp.Participants, ParticipantItem{
			ParticipantID: p.ParticipantID,
			ScreenName:    p.ScreenName,
			Role:          p.Role,
		})
	}

	httputil.OK(w, resp)
}

// DELETE /api/participants/{meetingID}
func (h *Handler) Teardown(w http.ResponseWriter, r *http.Request) {
	h.svc.EndMeeting(meetingKey(r))
	httputil.OK(w, StatusResponse{Success: true})
}
