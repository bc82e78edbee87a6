package realtime

// frameType identifies the kind of frame exchanged with the service.
type frameType string

const (
	frameTypeSessionInit  frameType = "session.init"
	frameTypeSessionReady frameType = "session.ready"
	frameTypeUserMessage  frameType = "user.message"
	frameTypeAgentMessage frameType = "agent.message"
	frameTypeError        frameType = "error"
	frameTypePing         frameType = "ping"
	frameTypePong         frameType = "pong"
)

// frame is the JSON envelope exchanged over the WebSocket connection.
type frame struct {
	Type frameType `json:"type"`

	// session.init fields.
	AgentID          string            `json:"agent_id,omitempty"`
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`

	// session.ready fields.
	ConversationID string `json:"conversation_id,omitempty"`

	// user.message / agent.message fields.
	Text string `json:"text,omitempty"`

	// error fields.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
