package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/view"
)

const (
	fieldTitle       = "Title"
	fieldDescription = "Description"
	fieldDate        = "Date"
	fieldTime        = "Time"
	fieldUser        = "User"
	fieldName        = "Name"
	fieldColor       = "Color"
)

type option struct {
	label string
	value int64
}

// field is either a text input or, when options is non-nil, a selector
// cycled with left and right.
type field struct {
	label    string
	input    textinput.Model
	options  []option
	selected int
}

func newTextField(label, value, placeholder string) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.SetValue(value)
	in.Cursor.SetMode(cursor.CursorStatic)
	return field{label: label, input: in}
}

func newSelectField(label string, options []option, value int64) field {
	f := field{label: label, options: options}
	for i, o := range options {
		if o.value == value {
			f.selected = i
		}
	}
	return f
}

func (f field) isSelect() bool {
	return f.options != nil
}

func (f field) optionValue() int64 {
	if len(f.options) == 0 {
		return 0
	}
	return f.options[f.selected].value
}

// form is the terminal rendition of one modal. id is the chore or user
// being edited.
type form struct {
	kind   view.ModalKind
	title  string
	id     int64
	fields []field
	focus  int
}

func (f *form) focusField(i int) {
	if n := len(f.fields); n > 0 {
		f.fields[f.focus].input.Blur()
		f.focus = (i%n + n) % n
		if !f.fields[f.focus].isSelect() {
			f.fields[f.focus].input.Focus()
		}
	}
}

func (f *form) field(label string) *field {
	for i := range f.fields {
		if f.fields[i].label == label {
			return &f.fields[i]
		}
	}
	return &field{}
}

func (f *form) text(label string) string {
	return f.field(label).input.Value()
}

// update applies a key that is not submit or close.
func (f *form) update(msg tea.KeyMsg, keys FormKeyMap) {
	switch {
	case key.Matches(msg, keys.NextField):
		f.focusField(f.focus + 1)
	case key.Matches(msg, keys.PreviousField):
		f.focusField(f.focus - 1)
	default:
		fd := &f.fields[f.focus]
		if !fd.isSelect() {
			fd.input, _ = fd.input.Update(msg)
			return
		}
		if n := len(fd.options); n > 0 {
			switch {
			case key.Matches(msg, keys.PreviousOption):
				fd.selected = (fd.selected - 1 + n) % n
			case key.Matches(msg, keys.NextOption):
				fd.selected = (fd.selected + 1) % n
			}
		}
	}
}

// userOptions lists the users. An owner that no longer exists is kept as
// its own option so submitting reports it instead of silently reassigning.
func userOptions(users []model.User, current int64) []option {
	opts := make([]option, 0, len(users)+1)
	found := current == 0
	for _, u := range users {
		opts = append(opts, option{label: u.Name, value: u.ID})
		found = found || u.ID == current
	}
	if !found {
		opts = append([]option{{label: view.UnknownOwner, value: current}}, opts...)
	}
	return opts
}

func dateValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

// parseDate returns the zero time for input that is not YYYY-MM-DD, which
// the controller rejects as missing.
func parseDate(s string, loc *time.Location) time.Time {
	t, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func choreFields(s view.State, title, description string, date time.Time, clock string, userID int64) []field {
	return []field{
		newTextField(fieldTitle, title, "Dishes"),
		newTextField(fieldDescription, description, "optional"),
		newTextField(fieldDate, dateValue(date), "YYYY-MM-DD"),
		newTextField(fieldTime, clock, "HH:MM"),
		newSelectField(fieldUser, userOptions(s.Users, userID), userID),
	}
}

func createChoreForm(s view.State) *form {
	c := s.CreateForm
	f := &form{
		kind:   view.ModalCreateChore,
		title:  "Add chore",
		fields: choreFields(s, c.Title, c.Description, c.Date, c.Time, c.UserID),
	}
	f.focusField(0)
	return f
}

func editChoreForm(s view.State) *form {
	d := s.EditingChore
	f := &form{
		kind:   view.ModalEditChore,
		title:  "Edit chore",
		id:     d.ID,
		fields: choreFields(s, d.Title, d.Description, d.Date, d.Time, d.UserID),
	}
	f.focusField(0)
	return f
}

func addUserForm(s view.State) *form {
	f := &form{
		kind:   view.ModalAddUser,
		title:  "Add user",
		fields: []field{newTextField(fieldName, s.NewUserName, "Name")},
	}
	f.focusField(0)
	return f
}

func editUserForm(s view.State) *form {
	d := s.EditingUser
	f := &form{
		kind:  view.ModalEditUser,
		title: "Edit user",
		id:    d.ID,
		fields: []field{
			newTextField(fieldName, d.Name, "Name"),
			newTextField(fieldColor, d.Color, "#RRGGBB"),
		},
	}
	f.focusField(0)
	return f
}

func (f *form) choreForm(loc *time.Location) view.ChoreForm {
	return view.ChoreForm{
		Date:        parseDate(f.text(fieldDate), loc),
		Time:        strings.TrimSpace(f.text(fieldTime)),
		UserID:      f.field(fieldUser).optionValue(),
		Title:       f.text(fieldTitle),
		Description: f.text(fieldDescription),
	}
}

func (f *form) choreDraft(loc *time.Location) view.ChoreDraft {
	c := f.choreForm(loc)
	return view.ChoreDraft{
		ID:          f.id,
		Date:        c.Date,
		Time:        c.Time,
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
	}
}

func (f *form) userDraft() view.UserDraft {
	return view.UserDraft{
		ID:    f.id,
		Name:  f.text(fieldName),
		Color: strings.TrimSpace(f.text(fieldColor)),
	}
}
