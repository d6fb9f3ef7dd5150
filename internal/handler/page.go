package handler

import (
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/view"
)

const (
	dayLabelLayout = "Monday, January 2, 2006"
	unknownColor   = "#9E9E9E"
)

type card struct {
	ID          int64
	Label       string
	Description string
}

type column struct {
	User    model.User
	Unknown bool
	Cards   []card
}

// page is what the templates render: the session's state plus values
// derived from it.
type page struct {
	view.State
	DayLabel   string
	Columns    []column
	Palette    []string
	CreateDate string
	EditDate   string
	// SessionToken names the session this page load belongs to. Only the
	// full layout carries it.
	SessionToken string
}

func newPage(s view.State) page {
	p := page{
		State:    s,
		DayLabel: s.Day.Format(dayLabelLayout),
		Palette:  model.UserPalette,
	}
	for _, u := range s.Users {
		p.Columns = append(p.Columns, column{User: u, Cards: cards(s.EventsForUser(u.ID))})
	}
	if orphans := s.UnassignedEvents(); len(orphans) > 0 {
		p.Columns = append(p.Columns, column{
			User:    model.User{Name: view.UnknownOwner, Color: unknownColor},
			Unknown: true,
			Cards:   cards(orphans),
		})
	}
	if !s.CreateForm.Date.IsZero() {
		p.CreateDate = s.CreateForm.Date.Format(model.DateLayout)
	}
	if s.EditingChore != nil && !s.EditingChore.Date.IsZero() {
		p.EditDate = s.EditingChore.Date.Format(model.DateLayout)
	}
	return p
}

// cardLabel reads "6:00 PM — Dishes".
func cardLabel(c model.Chore) string {
	return c.At.Format(model.CardTimeLayout) + " — " + c.Title
}

func cards(chores []model.Chore) []card {
	out := make([]card, 0, len(chores))
	for _, c := range chores {
		out = append(out, card{ID: c.ID, Label: cardLabel(c), Description: c.Description})
	}
	return out
}
