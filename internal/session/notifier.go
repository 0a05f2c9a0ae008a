package session

import "github.com/shiftmaze/shiftmaze/internal/model"

// ClientNotifier is the server-to-client push surface. Implementations must
// not block: one slow client may never hold up a broadcast to the rest.
type ClientNotifier interface {
	// OnJoin delivers the first full snapshot right after the handshake
	OnJoin(state *model.ClientGameState)

	// OnStateChange delivers a fresh snapshot after every mutation
	OnStateChange(state *model.ClientGameState)

	// OnMessage delivers a chat line or server notice
	OnMessage(text string, opts model.MessageOptions)

	// OnPushPositionHover relays the in-turn player's hover; nil clears it
	OnPushPositionHover(position *model.Position)

	// OnServerReject tells the client it was turned away and must not
	// reconnect automatically
	OnServerReject(reason string)

	// Close tears the underlying connection down
	Close()
}
