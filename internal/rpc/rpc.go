package rpc

import "encoding/json"

// Methods clients call on the server
const (
	MethodGetState              = "getState"
	MethodGetMyPosition         = "getMyPosition"
	MethodGetMyCurrentCards     = "getMyCurrentCards"
	MethodSetExtraPieceRotation = "setExtraPieceRotation"
	MethodSetPushPositionHover  = "setPushPositionHover"
	MethodSetMyName             = "setMyName"
	MethodMove                  = "move"
	MethodPush                  = "push"
	MethodSendMessage           = "sendMessage"
	MethodSpectate              = "spectate"

	// Admin-token-gated methods; the token travels as the first param
	MethodStart          = "start"
	MethodRestart        = "restart"
	MethodPromote        = "promote"
	MethodShuffleBoard   = "shuffleBoard"
	MethodRemovePlayer   = "removePlayer"
	MethodChangeSettings = "changeSettings"
)

// Notifications the server pushes to clients. They carry no id and expect
// no response.
const (
	NotifyOnJoin              = "onJoin"
	NotifyOnStateChange       = "onStateChange"
	NotifyOnMessage           = "onMessage"
	NotifyOnPushPositionHover = "onPushPositionHover"
	NotifyOnServerReject      = "onServerReject"
)

// Request is an incoming call. A zero ID marks a notification.
type Request struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request by ID with either a result or an error
type Response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Notification is a server-initiated push carrying no ID
type Notification struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// NewResponse marshals result into a Response for the given request ID
func NewResponse(id int64, result interface{}) (Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{}, err
	}
	return Response{ID: id, Result: raw}, nil
}

// NewErrorResponse wraps err into a Response for the given request ID
func NewErrorResponse(id int64, err error) Response {
	return Response{ID: id, Error: ToError(err)}
}
