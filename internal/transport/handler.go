package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/shiftmaze/shiftmaze/internal/rpc"
	"github.com/shiftmaze/shiftmaze/internal/session"
)

// Handler upgrades websocket connections and dispatches their RPC calls
// onto the session
type Handler struct {
	session  *session.Session
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler for the given session
func NewHandler(sess *session.Session, logger *slog.Logger) *Handler {
	return &Handler{
		session: sess,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients connect from arbitrary origins; the admin token
			// gates anything destructive
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "transport"),
	}
}

// Router builds the HTTP routes: the websocket endpoint and a health check
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", h.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWS runs one client connection: upgrade, join the session, then
// dispatch requests until the connection drops. The client supplies a
// stable id to reclaim its seat across reconnects.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	playerID := r.URL.Query().Get("id")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	name := r.URL.Query().Get("name")

	client := newClient(playerID, conn, h.logger)
	go client.writePump()

	if r.URL.Query().Get("spectate") != "" {
		if err := h.session.Spectate(playerID, client); err != nil {
			h.logger.Warn("spectate rejected", slog.String("player_id", playerID), slog.String("error", err.Error()))
			client.Close()
			return
		}
		client.readPump(h.dispatch)
		h.session.Disconnect(playerID)
		return
	}

	if err := h.session.Connect(playerID, name, client); err != nil {
		// The session already sent onServerReject and closed the client
		h.logger.Info("join rejected", slog.String("player_id", playerID), slog.String("error", err.Error()))
		return
	}

	client.readPump(h.dispatch)
	h.session.Disconnect(playerID)
}

// dispatch routes one request to the session and queues the response.
// Notifications (requests without an id) get no response.
func (h *Handler) dispatch(c *Client, payload []byte) {
	var req rpc.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		c.respond(rpc.NewErrorResponse(0, rpc.NewInvalidRequestError("malformed request")))
		return
	}

	result, err := h.call(c, req)
	if req.ID == 0 {
		if err != nil {
			h.logger.Debug("notification failed",
				slog.String("method", req.Method),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if err != nil {
		c.respond(rpc.NewErrorResponse(req.ID, err))
		return
	}
	resp, err := rpc.NewResponse(req.ID, result)
	if err != nil {
		c.respond(rpc.NewErrorResponse(req.ID, err))
		return
	}
	c.respond(resp)
}

func (h *Handler) call(c *Client, req rpc.Request) (interface{}, error) {
	switch req.Method {
	case rpc.MethodGetState:
		return h.session.State(c.playerID), nil

	case rpc.MethodGetMyPosition:
		pos, err := h.session.MyPosition(c.playerID)
		if err != nil {
			return nil, err
		}
		return pos, nil

	case rpc.MethodGetMyCurrentCards:
		return h.session.MyCurrentCards(c.playerID), nil

	case rpc.MethodSetExtraPieceRotation:
		var p rpc.SetExtraPieceRotationParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.SetExtraPieceRotation(c.playerID, p.Rotation)

	case rpc.MethodSetPushPositionHover:
		var p rpc.SetPushPositionHoverParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.SetPushPositionHover(c.playerID, p.Position)

	case rpc.MethodSetMyName:
		var p rpc.SetMyNameParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.SetMyName(c.playerID, p.Name)

	case rpc.MethodMove:
		var p rpc.MoveParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.Move(c.playerID, p.MoveTo)

	case rpc.MethodPush:
		var p rpc.PushParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.Push(c.playerID, p.PushPosition)

	case rpc.MethodSendMessage:
		var p rpc.SendMessageParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.SendMessage(c.playerID, p.Text)

	case rpc.MethodSpectate:
		return nil, h.session.Spectate(c.playerID, c)

	case rpc.MethodStart:
		var p rpc.TokenParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.Start(p.Token)

	case rpc.MethodRestart:
		var p rpc.TokenParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.Restart(p.Token)

	case rpc.MethodPromote:
		var p rpc.TokenParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.Promote(p.Token, c.playerID)

	case rpc.MethodShuffleBoard:
		var p rpc.ShuffleBoardParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.ShuffleBoard(p.Token, p.Level)

	case rpc.MethodRemovePlayer:
		var p rpc.RemovePlayerParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.RemovePlayer(p.Token, p.PlayerID)

	case rpc.MethodChangeSettings:
		var p rpc.ChangeSettingsParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return nil, err
		}
		return nil, h.session.ChangeSettings(p.Token, p.Settings)

	default:
		return nil, rpc.NewUnknownMethodError(req.Method)
	}
}

func unmarshalParams(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return rpc.NewInvalidRequestError("missing params")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return rpc.NewInvalidRequestError("malformed params")
	}
	return nil
}
