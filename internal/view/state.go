// Package view owns the calendar's application state. State changes only
// through Reduce; the Controller performs backend calls and dispatches the
// resulting actions.
package view

import (
	"slices"
	"time"

	"github.com/dukerupert/chorecal/internal/model"
)

// Greeting opens every transcript.
const Greeting = `Hi! I'm your calendar assistant. I can help you manage users and chores. Try commands like "add user John" or "add chore for Alice".`

// UnknownOwner labels chores whose user no longer exists.
const UnknownOwner = "Unknown"

type ModalKind string

const (
	ModalCreateChore ModalKind = "create-chore"
	ModalAddUser     ModalKind = "add-user"
	ModalEditUser    ModalKind = "edit-user"
	ModalEditChore   ModalKind = "edit-chore"
	ModalChat        ModalKind = "chat"
)

// ParseModal maps a modal name from a URL back to its kind.
func ParseModal(s string) (ModalKind, bool) {
	switch k := ModalKind(s); k {
	case ModalCreateChore, ModalAddUser, ModalEditUser, ModalEditChore, ModalChat:
		return k, true
	}
	return "", false
}

// Modals are independent visibility flags; any combination is allowed.
type Modals struct {
	CreateChore bool
	AddUser     bool
	EditUser    bool
	EditChore   bool
	Chat        bool
}

// ChoreForm holds the create-chore form's fields. Time is HH:MM.
type ChoreForm struct {
	Date        time.Time
	Time        string
	UserID      int64
	Title       string
	Description string
}

// UserDraft is a detached copy of a user being edited.
type UserDraft struct {
	ID    int64
	Name  string
	Color string
}

// ChoreDraft is a detached copy of a chore being edited. Time is HH:MM.
type ChoreDraft struct {
	ID          int64
	Date        time.Time
	Time        string
	UserID      int64
	Title       string
	Description string
}

type State struct {
	SessionID string
	// Day is midnight of the selected calendar day.
	Day          time.Time
	Users        []model.User
	Chores       []model.Chore
	ActiveUserID int64

	Modals       Modals
	CreateForm   ChoreForm
	NewUserName  string
	EditingUser  *UserDraft
	EditingChore *ChoreDraft
	FormError    string
	Alert        string

	Transcript []model.ChatMessage

	// ChoresSeq is the sequence number of the newest chores response applied.
	ChoresSeq uint64
}

// clone copies everything a renderer could hold on to.
func (s State) clone() State {
	s.Users = slices.Clone(s.Users)
	s.Chores = slices.Clone(s.Chores)
	s.Transcript = slices.Clone(s.Transcript)
	if s.EditingUser != nil {
		u := *s.EditingUser
		s.EditingUser = &u
	}
	if s.EditingChore != nil {
		c := *s.EditingChore
		s.EditingChore = &c
	}
	return s
}

func (s State) User(id int64) (model.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func (s State) Chore(id int64) (model.Chore, bool) {
	for _, c := range s.Chores {
		if c.ID == id {
			return c, true
		}
	}
	return model.Chore{}, false
}

// OwnerName returns the user's name, or UnknownOwner for a dangling id.
func (s State) OwnerName(userID int64) string {
	if u, ok := s.User(userID); ok {
		return u.Name
	}
	return UnknownOwner
}

// EventsForUser returns the user's chores on the selected day, earliest
// first.
func (s State) EventsForUser(userID int64) []model.Chore {
	return s.eventsWhere(func(c model.Chore) bool { return c.UserID == userID })
}

// UnassignedEvents returns chores on the selected day whose user does not
// exist, earliest first.
func (s State) UnassignedEvents() []model.Chore {
	return s.eventsWhere(func(c model.Chore) bool {
		_, ok := s.User(c.UserID)
		return !ok
	})
}

func (s State) eventsWhere(keep func(model.Chore) bool) []model.Chore {
	var out []model.Chore
	for _, c := range s.Chores {
		if c.OnDay(s.Day) && keep(c) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Chore) int {
		return a.At.Compare(b.At)
	})
	return out
}
