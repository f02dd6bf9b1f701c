package websocket

// ActionUserEvent tags messages that carry a models.UserEvent payload.
const ActionUserEvent = "user.event"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
