package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/chorecal/internal/model"
)

// ChoreInput is what the calendar submits for a new or edited chore.
type ChoreInput struct {
	Title       string
	Description string
	At          time.Time
	UserID      int64
}

// choreWire is the backend's chore shape. The backend calls the title
// "description"; the optional free text travels as "notes".
type choreWire struct {
	ID          int64  `json:"id,omitempty"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
	Time        string `json:"time"`
	Date        string `json:"date"`
	UserID      int64  `json:"userId"`
}

func toWire(in ChoreInput) choreWire {
	return choreWire{
		Description: in.Title,
		Notes:       in.Description,
		Time:        in.At.Format(model.TimeLayout),
		Date:        in.At.Format(model.DateLayout),
		UserID:      in.UserID,
	}
}

// ParseDateTime combines a wire date (YYYY-MM-DD) and time (HH:MM:SS or
// HH:MM) into one value in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	clock = strings.TrimSpace(clock)
	layout := model.TimeLayout
	if strings.Count(clock, ":") == 1 {
		layout = model.ShortTimeLayout
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

func (c *Client) fromWire(w choreWire) (model.Chore, error) {
	at, err := ParseDateTime(w.Date, w.Time, c.loc)
	if err != nil {
		return model.Chore{}, fmt.Errorf("chore %d: %w", w.ID, err)
	}
	return model.Chore{
		ID:          w.ID,
		Title:       w.Description,
		Description: w.Notes,
		At:          at,
		UserID:      w.UserID,
	}, nil
}

func (c *Client) fromWireList(ws []choreWire) ([]model.Chore, error) {
	chores := make([]model.Chore, 0, len(ws))
	for _, w := range ws {
		ch, err := c.fromWire(w)
		if err != nil {
			return nil, err
		}
		chores = append(chores, ch)
	}
	return chores, nil
}

func dateQuery(day time.Time) url.Values {
	return url.Values{"date": []string{day.Format(model.DateLayout)}}
}

// ListChores returns the chores scheduled on day.
func (c *Client) ListChores(ctx context.Context, day time.Time) ([]model.Chore, error) {
	var ws []choreWire
	if err := c.do(ctx, http.MethodGet, "/chores", dateQuery(day), nil, &ws); err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	chores, err := c.fromWireList(ws)
	if err != nil {
		return nil, fmt.Errorf("list chores: decode: %w", err)
	}
	return chores, nil
}

// ListUserChores returns one user's chores scheduled on day.
func (c *Client) ListUserChores(ctx context.Context, userID int64, day time.Time) ([]model.Chore, error) {
	var ws []choreWire
	path := fmt.Sprintf("/chores/user/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, dateQuery(day), nil, &ws); err != nil {
		return nil, fmt.Errorf("list chores for user %d: %w", userID, err)
	}
	chores, err := c.fromWireList(ws)
	if err != nil {
		return nil, fmt.Errorf("list chores for user %d: decode: %w", userID, err)
	}
	return chores, nil
}

func (c *Client) CreateChore(ctx context.Context, in ChoreInput) (model.Chore, error) {
	var w choreWire
	if err := c.do(ctx, http.MethodPost, "/chores", nil, toWire(in), &w); err != nil {
		return model.Chore{}, fmt.Errorf("create chore: %w", err)
	}
	ch, err := c.fromWire(w)
	if err != nil {
		return model.Chore{}, fmt.Errorf("create chore: decode: %w", err)
	}
	return ch, nil
}

func (c *Client) UpdateChore(ctx context.Context, id int64, in ChoreInput) (model.Chore, error) {
	var w choreWire
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/chores/%d", id), nil, toWire(in), &w); err != nil {
		return model.Chore{}, fmt.Errorf("update chore %d: %w", id, err)
	}
	ch, err := c.fromWire(w)
	if err != nil {
		return model.Chore{}, fmt.Errorf("update chore %d: decode: %w", id, err)
	}
	return ch, nil
}

func (c *Client) DeleteChore(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/chores/%d", id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete chore %d: %w", id, err)
	}
	return nil
}
