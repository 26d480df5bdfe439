package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"maternity-care-server/internal/events"
	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// EventsHandler streams change events over a WebSocket.
type EventsHandler struct {
	Broker   *events.Broker
	Log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new EventsHandler. Only allowedOrigin may open
// a socket unless allowAny is set.
func NewEventsHandler(broker *events.Broker, allowedOrigin string, allowAny bool, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		Broker: broker,
		Log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAny || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Stream subscribes the caller to their own topic: doctors get events about
// their patients, patients get events about their own records.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	topic := events.PatientTopic(userID)
	if role == models.RoleDoctor {
		topic = events.DoctorTopic(userID)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.Log.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch, cancel := h.Broker.Subscribe(topic)
	defer cancel()
	h.Log.Debug().Str("topic", topic).Msg("event stream opened")

	// Inbound frames are ignored; reading is only how a close is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
