package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/chorecal/internal/backend"
	"github.com/dukerupert/chorecal/internal/command"
	"github.com/dukerupert/chorecal/internal/fakebackend"
	"github.com/dukerupert/chorecal/internal/fakebackend/fakebackendtest"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/view"
)

var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	esc       = tea.KeyMsg{Type: tea.KeyEsc}
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	clearLine = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (Model, *fakebackendtest.Server) {
	t.Helper()
	fb := fakebackendtest.Start(t)
	client := backend.New(backend.Config{BaseURL: fb.URL(), Location: time.UTC})
	ctrl := view.New(client, view.Options{
		SessionID: "session-test",
		Location:  time.UTC,
		Now:       func() time.Time { return testNow },
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		AfterFunc: func(_ time.Duration, f func()) { f() },
	})
	return New(context.Background(), ctrl), fb
}

// run executes cmd and every command that follows from it, feeding the
// resulting messages back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, follow := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, follow)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, cmd := m.Update(k)
		m = run(t, updated.(Model), cmd)
	}
	return m
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	return run(t, m, m.Init())
}

func seedUser(t *testing.T, fb *fakebackendtest.Server, name string) fakebackend.User {
	t.Helper()
	u, err := fb.SeedUser(name, model.PaletteColor(0))
	require.NoError(t, err)
	return u
}

func seedChore(t *testing.T, fb *fakebackendtest.Server, userID int64, title, clock string) fakebackend.Chore {
	t.Helper()
	c, err := fb.SeedChore(fakebackend.Chore{Description: title, Date: "2024-01-15", Time: clock, UserID: userID})
	require.NoError(t, err)
	return c
}

func TestModelLoad(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	bob := seedUser(t, fb, "Bob")
	_, err := fb.SeedChore(fakebackend.Chore{Description: "Dishes", Notes: "Pans too", Date: "2024-01-15", Time: "18:00:00", UserID: bob.ID})
	require.NoError(t, err)

	m = load(t, m)
	out := m.View()

	require.Contains(t, out, "Monday, January 15, 2024")
	require.Contains(t, out, "Alice")
	require.Contains(t, out, "Bob")
	require.Contains(t, out, "6:00 PM — Dishes")
	require.Contains(t, out, "Pans too")
	require.NotContains(t, out, view.UnknownOwner)
}

func TestModelEmpty(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)
	require.Contains(t, m.View(), "No users yet")
}

func TestModelDayNavigation(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	m = load(t, m)

	m = press(t, m, runes("l"))
	require.Equal(t, 16, m.state.Day.Day())
	require.Contains(t, m.View(), "Tuesday, January 16, 2024")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, runes("h"))
	require.Equal(t, 14, m.state.Day.Day())

	m = press(t, m, runes("t"))
	require.Equal(t, 15, m.state.Day.Day())
}

func TestModelCardNavigation(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	bob := seedUser(t, fb, "Bob")
	seedChore(t, fb, bob.ID, "Trash", "08:00:00")
	late := seedChore(t, fb, bob.ID, "Dishes", "18:00:00")
	m = load(t, m)

	m = press(t, m, tab, runes("j"), runes("j"))
	require.Equal(t, 1, m.col)
	require.Equal(t, 1, m.row, "row stops at the last card")

	m = press(t, m, runes("e"))
	require.NotNil(t, m.form)
	require.Equal(t, view.ModalEditChore, m.form.kind)
	require.Equal(t, late.ID, m.form.id)

	m = press(t, m, esc, runes("k"))
	require.Nil(t, m.form)
	require.Equal(t, 0, m.row)

	m = press(t, m, tab)
	require.Equal(t, 0, m.col, "tab wraps around")
}

func TestModelCreateChore(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	bob := seedUser(t, fb, "Bob")
	m = load(t, m)

	m = press(t, m, tab, runes("a"))
	require.NotNil(t, m.form)
	require.Equal(t, "Add chore", m.form.title)
	require.Equal(t, bob.ID, m.form.field(fieldUser).optionValue())
	require.Equal(t, "2024-01-15", m.form.text(fieldDate))

	// Title, Description, Date, Time.
	m = press(t, m, runes("Dishes"), tab, tab, tab, runes("18:00"), enter)
	require.Nil(t, m.form)
	require.False(t, m.state.Modals.CreateChore)
	require.Contains(t, m.View(), "6:00 PM — Dishes")

	chores, err := fb.Chores("2024-01-15")
	require.NoError(t, err)
	require.Len(t, chores, 1)
	require.Equal(t, bob.ID, chores[0].UserID)
}

func TestModelCreateChoreValidation(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	m = load(t, m)

	m = press(t, m, runes("a"), enter)
	require.NotNil(t, m.form)
	require.Contains(t, m.View(), "Title is required")

	m = press(t, m, runes("Dishes"), tab, tab, tab, runes("6pm"), enter)
	require.Contains(t, m.View(), "Time must be HH:MM")

	m = press(t, m, esc)
	require.Nil(t, m.form)
	require.False(t, m.state.Modals.CreateChore)
	require.NotContains(t, m.View(), "Time must be HH:MM")
}

func TestModelAddUser(t *testing.T) {
	m, fb := newTestModel(t)
	m = load(t, m)

	m = press(t, m, runes("u"))
	require.NotNil(t, m.form)
	require.Equal(t, view.ModalAddUser, m.form.kind)

	// Keys that are bindings elsewhere are text inside a form.
	m = press(t, m, runes("q"), clearLine, runes("Carol"), enter)
	require.Nil(t, m.form)

	users, err := fb.Users()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Carol", users[0].Name)
	require.Equal(t, model.PaletteColor(0), users[0].Color)
	require.Contains(t, m.View(), "Carol")
}

func TestModelEditUser(t *testing.T) {
	m, fb := newTestModel(t)
	seedUser(t, fb, "Alice")
	m = load(t, m)

	m = press(t, m, runes("E"))
	require.NotNil(t, m.form)
	require.Equal(t, "Alice", m.form.text(fieldName))

	m = press(t, m, clearLine, runes("Alicia"), tab, clearLine, runes("purple"), enter)
	require.Contains(t, m.View(), "Color must look like #RRGGBB")

	m = press(t, m, clearLine, runes("#123456"), enter)
	require.Nil(t, m.form)

	users, err := fb.Users()
	require.NoError(t, err)
	require.Equal(t, "Alicia", users[0].Name)
	require.Equal(t, "#123456", users[0].Color)
}

func TestModelEditChore(t *testing.T) {
	m, fb := newTestModel(t)
	alice := seedUser(t, fb, "Alice")
	seedChore(t, fb, alice.ID, "Dishes", "18:00:00")
	m = load(t, m)

	m = press(t, m, runes("e"))
	require.NotNil(t, m.form)
	require.Equal(t, "Dishes", m.form.text(fieldTitle))
	require.Equal(t, "18:00", m.form.text(fieldTime))

	m = press(t, m, clearLine, runes("Dry dishes"), enter)
	require.Nil(t, m.form)
	require.Contains(t, m.View(), "6:00 PM — Dry dishes")
}

func TestModelDeleteChoreConfirm(t *testing.T) {
	m, fb := newTestModel(t)
	alice := seedUser(t, fb, "Alice")
	seedChore(t, fb, alice.ID, "Dishes", "18:00:00")
	m = load(t, m)

	m = press(t, m, runes("d"))
	require.Contains(t, m.View(), `Delete "Dishes"? (y/n)`)

	m = press(t, m, runes("n"))
	require.Nil(t, m.confirm)
	require.Len(t, m.state.Chores, 1)

	m = press(t, m, runes("d"), runes("y"))
	require.Empty(t, m.state.Chores)
	require.NotContains(t, m.View(), "Dishes")
}

func TestModelDeleteUserKeepsChores(t *testing.T) {
	m, fb := newTestModel(t)
	alice := seedUser(t, fb, "Alice")
	seedChore(t, fb, alice.ID, "Dishes", "18:00:00")
	m = load(t, m)

	m = press(t, m, runes("D"))
	require.Contains(t, m.View(), "Delete Alice? Their chores will remain.")

	m = press(t, m, runes("y"))
	require.Empty(t, m.state.Users)
	out := m.View()
	require.Contains(t, out, view.UnknownOwner)
	require.Contains(t, out, "6:00 PM — Dishes")

	// The unknown column has no user to edit or delete.
	m = press(t, m, runes("E"), runes("D"))
	require.Nil(t, m.form)
	require.Nil(t, m.confirm)
}

func TestModelAlertBlocksInput(t *testing.T) {
	m, fb := newTestModel(t)
	m = load(t, m)
	fb.FailAll.Store(true)

	m = press(t, m, runes("u"), runes("Carol"), enter)
	require.Equal(t, "Failed to add user", m.state.Alert)
	require.Contains(t, m.View(), "Failed to add user")

	m = press(t, m, runes("l"))
	require.Equal(t, 15, m.state.Day.Day(), "alert swallows other keys")

	m = press(t, m, enter)
	require.Empty(t, m.state.Alert)
	require.NotNil(t, m.form, "form stays open after the alert")
	require.Equal(t, "Carol", m.form.text(fieldName))
}

func TestModelChatAssistant(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)

	m = press(t, m, runes("c"))
	require.True(t, m.state.Modals.Chat)
	require.Contains(t, m.View(), "calendar assistant")

	m = press(t, m, runes("hello"), enter)
	last := m.state.Transcript[len(m.state.Transcript)-1]
	require.Equal(t, model.RoleBot, last.Role)
	require.Equal(t, "You said: hello", last.Text)
	require.Empty(t, m.chat.Value())

	m = press(t, m, esc)
	require.False(t, m.state.Modals.Chat)
}

func TestModelChatFallback(t *testing.T) {
	m, fb := newTestModel(t)
	alice := seedUser(t, fb, "Alice")
	fb.FailAssistant.Store(true)
	m = load(t, m)

	m = press(t, m, runes("c"), runes("help"), enter)
	last := m.state.Transcript[len(m.state.Transcript)-1]
	require.Equal(t, command.HelpText, last.Text)

	m = press(t, m, runes("add chore for alice"), enter)
	require.False(t, m.state.Modals.Chat)
	require.NotNil(t, m.form)
	require.Equal(t, view.ModalCreateChore, m.form.kind)
	require.Equal(t, alice.ID, m.form.field(fieldUser).optionValue())
}

func TestModelChatInputCapturesKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)
	m = press(t, m, runes("c"))

	updated, cmd := m.Update(runes("q"))
	m = updated.(Model)
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		require.False(t, quit)
	}
	require.Equal(t, "q", m.chat.Value())
}

func TestModelStateChangedFromOutside(t *testing.T) {
	m, fb := newTestModel(t)
	m = load(t, m)
	seedUser(t, fb, "Dana")

	require.NoError(t, m.ctrl.Load(context.Background()))
	updated, _ := m.Update(stateChangedMsg{})
	m = updated.(Model)
	require.Contains(t, m.View(), "Dana")
}

func TestModelOrphanedOwnerIsKept(t *testing.T) {
	m, fb := newTestModel(t)
	alice := seedUser(t, fb, "Alice")
	bob := seedUser(t, fb, "Bob")
	seedChore(t, fb, bob.ID, "Dishes", "18:00:00")
	m = load(t, m)

	require.NoError(t, m.ctrl.DeleteUser(context.Background(), bob.ID))
	m = run(t, m, func() tea.Msg { return stateChangedMsg{} })

	m = press(t, m, tab, runes("e"))
	require.NotNil(t, m.form)
	require.Equal(t, bob.ID, m.form.field(fieldUser).optionValue())

	m = press(t, m, enter)
	require.Contains(t, m.View(), "That user no longer exists")

	m = press(t, m, tab, tab, tab, tab, tea.KeyMsg{Type: tea.KeyRight}, enter)
	require.Nil(t, m.form)
	chores, err := fb.Chores("2024-01-15")
	require.NoError(t, err)
	require.Equal(t, alice.ID, chores[0].UserID)
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestUserOptions(t *testing.T) {
	users := []model.User{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}

	opts := userOptions(users, 2)
	require.Len(t, opts, 2)

	opts = userOptions(users, 9)
	require.Len(t, opts, 3)
	require.Equal(t, view.UnknownOwner, opts[0].label)

	require.Len(t, userOptions(nil, 0), 0)
	require.True(t, parseDate("soon", time.UTC).IsZero())
	require.Empty(t, dateValue(time.Time{}))
}
