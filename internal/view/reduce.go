package view

import (
	"slices"
	"time"

	"github.com/dukerupert/chorecal/internal/model"
)

// Action is a state transition. Reduce is the only consumer.
type Action interface {
	isAction()
}

type (
	UsersLoaded struct{ Users []model.User }

	// ChoresLoaded carries the day and sequence number the fetch was issued
	// for, so late responses can be dropped.
	ChoresLoaded struct {
		Day    time.Time
		Seq    uint64
		Chores []model.Chore
	}
	ChoresFailed struct {
		Day time.Time
		Seq uint64
	}

	DayChanged struct{ Day time.Time }
	DayShifted struct{ Days int }

	CreateChoreOpened struct{ UserID int64 }
	AddUserOpened     struct{}
	UserEditOpened    struct{ Draft UserDraft }
	ChoreEditOpened   struct{ Draft ChoreDraft }
	ModalClosed       struct{ Modal ModalKind }
	ChatToggled       struct{}

	CreateFormEdited   struct{ Form ChoreForm }
	NewUserNameEdited  struct{ Name string }
	UserDraftEdited    struct{ Draft UserDraft }
	ChoreDraftEdited   struct{ Draft ChoreDraft }
	FormRejected       struct{ Message string }
	MessageAppended    struct{ Message model.ChatMessage }
	AlertRaised        struct{ Text string }
	AlertDismissed     struct{}
	ChoreCreated       struct{}
	UserCreated        struct{}
	UserUpdated        struct{}
	ChoreUpdated       struct{}
)

func (UsersLoaded) isAction()       {}
func (ChoresLoaded) isAction()      {}
func (ChoresFailed) isAction()      {}
func (DayChanged) isAction()        {}
func (DayShifted) isAction()        {}
func (CreateChoreOpened) isAction() {}
func (AddUserOpened) isAction()     {}
func (UserEditOpened) isAction()    {}
func (ChoreEditOpened) isAction()   {}
func (ModalClosed) isAction()       {}
func (ChatToggled) isAction()       {}
func (CreateFormEdited) isAction()  {}
func (NewUserNameEdited) isAction() {}
func (UserDraftEdited) isAction()   {}
func (ChoreDraftEdited) isAction()  {}
func (FormRejected) isAction()      {}
func (MessageAppended) isAction()   {}
func (AlertRaised) isAction()       {}
func (AlertDismissed) isAction()    {}
func (ChoreCreated) isAction()      {}
func (UserCreated) isAction()       {}
func (UserUpdated) isAction()       {}
func (ChoreUpdated) isAction()      {}

// Reduce returns the state after applying a. It never mutates s's slices.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case UsersLoaded:
		s.Users = slices.Clone(a.Users)
		if _, ok := s.User(s.ActiveUserID); !ok {
			s.ActiveUserID = 0
			if len(s.Users) > 0 {
				s.ActiveUserID = s.Users[0].ID
			}
		}

	case ChoresLoaded:
		if !model.SameDay(s.Day, a.Day) || a.Seq < s.ChoresSeq {
			return s
		}
		s.Chores = nil
		for _, c := range a.Chores {
			if c.OnDay(s.Day) {
				s.Chores = append(s.Chores, c)
			}
		}
		s.ChoresSeq = a.Seq

	case ChoresFailed:
		if !model.SameDay(s.Day, a.Day) || a.Seq < s.ChoresSeq {
			return s
		}
		s.Chores = nil
		s.ChoresSeq = a.Seq

	case DayChanged:
		s.Day = model.StartOfDay(a.Day)
		s.Chores = nil

	case DayShifted:
		s.Day = model.StartOfDay(s.Day.AddDate(0, 0, a.Days))
		s.Chores = nil

	case CreateChoreOpened:
		if a.UserID != 0 {
			s.ActiveUserID = a.UserID
		}
		s.CreateForm = ChoreForm{Date: s.Day, UserID: s.ActiveUserID}
		s.Modals.CreateChore = true
		s.FormError = ""

	case AddUserOpened:
		s.NewUserName = ""
		s.Modals.AddUser = true
		s.FormError = ""

	case UserEditOpened:
		d := a.Draft
		s.EditingUser = &d
		s.Modals.EditUser = true
		s.FormError = ""

	case ChoreEditOpened:
		d := a.Draft
		s.EditingChore = &d
		s.Modals.EditChore = true
		s.FormError = ""

	case ModalClosed:
		switch a.Modal {
		case ModalCreateChore:
			s.Modals.CreateChore = false
		case ModalAddUser:
			s.Modals.AddUser = false
		case ModalEditUser:
			s.Modals.EditUser = false
			s.EditingUser = nil
		case ModalEditChore:
			s.Modals.EditChore = false
			s.EditingChore = nil
		case ModalChat:
			s.Modals.Chat = false
		}
		if a.Modal != ModalChat {
			s.FormError = ""
		}

	case ChatToggled:
		s.Modals.Chat = !s.Modals.Chat

	case CreateFormEdited:
		s.CreateForm = a.Form
		if _, ok := s.User(a.Form.UserID); ok {
			s.ActiveUserID = a.Form.UserID
		}

	case NewUserNameEdited:
		s.NewUserName = a.Name

	case UserDraftEdited:
		d := a.Draft
		s.EditingUser = &d

	case ChoreDraftEdited:
		d := a.Draft
		s.EditingChore = &d

	case FormRejected:
		s.FormError = a.Message

	case MessageAppended:
		s.Transcript = append(slices.Clip(s.Transcript), a.Message)

	case AlertRaised:
		s.Alert = a.Text

	case AlertDismissed:
		s.Alert = ""

	case ChoreCreated:
		s.Modals.CreateChore = false
		s.CreateForm = ChoreForm{}
		s.FormError = ""

	case UserCreated:
		s.Modals.AddUser = false
		s.NewUserName = ""
		s.FormError = ""

	case UserUpdated:
		s.Modals.EditUser = false
		s.EditingUser = nil
		s.FormError = ""

	case ChoreUpdated:
		s.Modals.EditChore = false
		s.EditingChore = nil
		s.FormError = ""
	}
	return s
}
