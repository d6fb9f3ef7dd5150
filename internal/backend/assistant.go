package backend

import (
	"context"
	"fmt"
	"net/http"
)

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat sends one turn to the assistant and returns its reply text. The
// assistant may change users and chores on the server as a side effect.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (string, error) {
	var resp chatResponse
	req := chatRequest{SessionID: sessionID, Message: message}
	if err := c.do(ctx, http.MethodPost, "/assistant/chat", nil, req, &resp); err != nil {
		return "", fmt.Errorf("assistant chat: %w", err)
	}
	return resp.Response, nil
}
