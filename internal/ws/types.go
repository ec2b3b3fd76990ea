package ws

const (
	// client -> server
	MsgPing = "ping"

	// server -> client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
)

// Message is the envelope of frames sent by clients.
type Message struct {
	Type string `json:"type"`
}
