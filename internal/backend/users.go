package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukerupert/chorecal/internal/model"
)

// UserInput is the body of user create and update requests.
type UserInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, in, &u); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, in, &u); err != nil {
		return model.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
