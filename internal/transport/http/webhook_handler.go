package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/presence-service/internal/service"
	"github.com/cwrk-planet/presence-service/internal/webhook"
	"github.com/cwrk-planet/presence-service/pkg/errs"
	"github.com/cwrk-planet/presence-service/pkg/httputil"
	"github.com/cwrk-planet/presence-service/pkg/meetingid"
)

const (
	headerSignature = "x-zm-signature"
	headerTimestamp = "x-zm-request-timestamp"

	eventURLValidation     = "endpoint.url_validation"
	eventParticipantJoined = "meeting.participant_joined"
	eventParticipantLeft   = "meeting.participant_left"
)

type WebhookHandler struct {
	svc      *service.PresenceService
	verifier *webhook.Verifier
}

func NewWebhookHandler(svc *service.PresenceService, verifier *webhook.Verifier) *WebhookHandler {
	return &WebhookHandler{svc: svc, verifier: verifier}
}

// POST /api/webhooks/zoom
//
// The raw body bytes are read once and handed to both the verifier and the
// decoder: the signature covers the exact serialization as received.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	// Bootstrap exchange: no signature verification required.
	if env.Event == eventURLValidation {
		h.handleValidation(w, env)
		return
	}

	sig := r.Header.Get(headerSignature)
	ts := r.Header.Get(headerTimestamp)
	if err := h.verifier.Verify(sig, ts, body); err != nil {
		if errors.Is(err, errs.ErrConfig) {
			slog.Error("webhook verification unavailable", "err", err)
		} else {
			slog.Warn("webhook signature rejected", "event", env.Event, "err", err)
		}
		httputil.Error(w, errs.ToHTTP(err), err.Error())
		return
	}

	switch env.Event {
	case eventParticipantJoined:
		h.handleJoined(w, env)
	case eventParticipantLeft:
		h.handleLeft(w, env)
	default:
		// Unknown event kinds are accepted, for forward compatibility.
		slog.Debug("unhandled webhook event", "event", env.Event)
		httputil.OK(w, StatusResponse{Success: true})
	}
}

func (h *WebhookHandler) handleValidation(w http.ResponseWriter, env webhookEnvelope) {
	if env.Payload.PlainToken == "" {
		httputil.Error(w, http.StatusBadRequest, "missing plainToken")
		return
	}
	encrypted, err := h.verifier.HashToken(env.Payload.PlainToken)
	if err != nil {
		slog.Error("handshake failed", "err", err)
		httputil.Error(w, errs.ToHTTP(err), err.Error())
		return
	}
	httputil.OK(w, ValidationResponse{
		PlainToken:     env.Payload.PlainToken,
		EncryptedToken: encrypted,
	})
}

func (h *WebhookHandler) handleJoined(w http.ResponseWriter, env webhookEnvelope) {
	key, participant, ok := h.eventTarget(w, env)
	if !ok {
		return
	}

	stored := h.svc.WebhookJoin(key, participant.participantID(), participant.screenName(), participant.Role)
	slog.Info("webhook participant joined",
		"meeting", key, "participant", participant.participantID(), "stored", stored)
	httputil.OK(w, StatusResponse{Success: true})
}

func (h *WebhookHandler) handleLeft(w http.ResponseWriter, env webhookEnvelope) {
	key, participant, ok := h.eventTarget(w, env)
	if !ok {
		return
	}

	h.svc.WebhookLeave(key, participant.participantID())
	slog.Info("webhook participant left", "meeting", key, "participant", participant.participantID())
	httputil.OK(w, StatusResponse{Success: true})
}

// eventTarget extracts and normalizes the meeting key and participant from a
// verified event, writing the 400 itself when either is missing.
func (h *WebhookHandler) eventTarget(w http.ResponseWriter, env webhookEnvelope) (string, webhookParticipant, bool) {
	if env.Payload.Object.UUID == "" {
		httputil.Error(w, http.StatusBadRequest, "missing meeting uuid")
		return "", webhookParticipant{}, false
	}
	participant := env.Payload.Object.Participant
	if participant.participantID() == "" {
		httputil.Error(w, http.StatusBadRequest, "missing participant data")
		return "", webhookParticipant{}, false
	}
	return meetingid.Encode(env.Payload.Object.UUID), participant, true
}
