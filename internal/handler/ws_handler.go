package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
	ws "github.com/stemsi/recruit-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live test session to the candidate's browser.
type WSHandler struct {
	sessions *service.TestSessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.TestSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// TestStream godoc
// WS /ws/v1/applicants/:id/test/stream
// Pushes session notices (ticks, warnings, submission) and accepts
// answer, navigate, violation, submit and ping actions.
func (h *WSHandler) TestStream(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	// Reject before upgrading so the client gets a normal HTTP error.
	view, err := h.sessions.State(id)
	if err != nil {
		failSession(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("applicant_id", id.String()).Logger()

	unsubscribe, done, err := h.sessions.Subscribe(id, func(n proctor.Notice) {
		if err := conn.WriteJSON(ws.EventNotice, n); err != nil {
			wsLog.Debug().Err(err).Str("notice", string(n.Kind)).Msg("Notice not delivered")
		}
	})
	if err != nil {
		h.writeSessionError(conn, err)
		return
	}
	defer unsubscribe()

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-done:
			conn.CloseWith(websocket.CloseNormalClosure, "test finished")
		case <-closed:
		}
	}()

	conn.WriteJSON(ws.EventState, view)
	wsLog.Info().Msg("Candidate connected")

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		h.dispatch(conn, wsLog, id, &msg)
	}
}

func (h *WSHandler) dispatch(conn *ws.Conn, wsLog zerolog.Logger, id uuid.UUID, msg *ws.RequestPayload) {
	switch msg.Action {
	case ws.ActionAnswer:
		if msg.QuestionID <= 0 || msg.Value.IsZero() {
			conn.WriteError(string(response.ErrValidation), "question_id and value are required")
			return
		}
		st, err := h.sessions.SelectAnswer(context.Background(), id, msg.QuestionID, msg.Value)
		h.reply(conn, st, err)

	case ws.ActionNavigate:
		if msg.Index == nil {
			conn.WriteError(string(response.ErrValidation), "index is required")
			return
		}
		st, err := h.sessions.Navigate(id, *msg.Index)
		h.reply(conn, st, err)

	case ws.ActionViolation:
		if !msg.Kind.Valid() {
			conn.WriteError(string(response.ErrValidation), "kind must be one of visibility copy cut paste")
			return
		}
		st, err := h.sessions.ReportViolation(id, msg.Kind)
		h.reply(conn, st, err)

	case ws.ActionSubmit:
		// The submitted notice carries the result; the socket closes after it.
		if _, err := h.sessions.Submit(id); err != nil {
			h.writeSessionError(conn, err)
		}

	case ws.ActionPing:
		conn.WriteJSON(ws.EventPong, nil)

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
	}
}

func (h *WSHandler) reply(conn *ws.Conn, st *proctor.State, err error) {
	if err != nil {
		h.writeSessionError(conn, err)
		return
	}
	conn.WriteJSON(ws.EventState, st)
}

func (h *WSHandler) writeSessionError(conn *ws.Conn, err error) {
	_, code := sessionErrorCode(err)
	conn.WriteError(string(code), response.GetMessage(code))
}
