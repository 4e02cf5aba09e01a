package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/cwrk-planet/presence-service/internal/service"
	"github.com/cwrk-planet/presence-service/pkg/meetingid"
)

// Server streams active-roster snapshots to watchers of a meeting. It
// implements service.Notifier: every reconciliation change re-broadcasts a
// fresh snapshot to that meeting's connections.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	svc      *service.PresenceService

	pingEvery time.Duration
}

func NewServer(hub *Hub, svc *service.PresenceService) *Server {
	return &Server{
		hub: hub,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws/meetings/{meetingID}
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "meetingID")
	if raw == "" {
		http.Error(w, "missing meeting id", http.StatusBadRequest)
		return
	}
	key := meetingid.Encode(raw)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, key)
	s.hub.Add(c)

	if err := c.Send(s.stateMessage(key)); err != nil {
		slog.Warn("ws send initial state failed", "meeting", key, "err", err)
	}

	go s.writeLoop(c)
	s.readLoop(c)

	s.hub.Remove(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "meeting", key, "err", err)
	}
}

// PresenceChanged implements service.Notifier. Best-effort by construction:
// snapshots are only built when someone is watching and sends never block.
func (s *Server) PresenceChanged(meetingKey string) {
	if !s.hub.HasWatchers(meetingKey) {
		return
	}
	s.hub.Broadcast(meetingKey, s.stateMessage(meetingKey))
}

func (s *Server) stateMessage(meetingKey string) Message {
	roster := s.svc.ListActive(meetingKey)
	items := make([]RosterItem, 0, len(roster.Participants))
	for _, p := range roster.Participants {
		items = append(items, RosterItem{
			ParticipantID: p.ParticipantID,
			ScreenName:    p.ScreenName,
			Role:          p.Role,
		})
	}

	return Message{
		Type: TypeState,
		Payload: StatePayload{
			MeetingKey:     meetingKey,
			Participants:   items,
			WebhookTracked: roster.WebhookTracked,
			UpdatedAtUnix:  roster.AsOf.Unix(),
		},
	}
}

// readLoop drains the connection until the peer goes away; watchers do not
// send anything we act on.
func (s *Server) readLoop(c *wsConn) {
	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn       *websocket.Conn
	meetingKey string
	out        chan Message
	closed     chan struct{}
}

func newWsConn(c *websocket.Conn, meetingKey string) *wsConn {
	return &wsConn{
		conn:       c,
		meetingKey: meetingKey,
		out:        make(chan Message, 8),
		closed:     make(chan struct{}),
	}
}

func (c *wsConn) MeetingKey() string { return c.meetingKey }

// Send queues a message for the write loop. A slow consumer drops messages
// instead of blocking the caller; the next snapshot supersedes anything lost.
func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	case c.out <- msg:
		return nil
	default:
		return nil
	}
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
		return nil
	default:
		close(c.closed)
	}
	return c.conn.Close()
}
