package model

// Chat roles as accepted in the history payload
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one prior message of a conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the body returned by the chat endpoint
type ChatReply struct {
	Role    string `json:"role"` // always "assistant"
	Content string `json:"content"`
}
