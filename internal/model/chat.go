package model

type Role string

const (
	RoleBot  Role = "bot"
	RoleUser Role = "user"
)

// ChatMessage is one line of the assistant transcript.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
