// Package tui is the terminal front-end. It drives the same view.Controller
// as the web front-end and renders its state with lipgloss.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/view"
)

// stateChangedMsg is sent by the controller's change callback, including
// for delayed chat replies that arrive outside any key press.
type stateChangedMsg struct{}

// opDoneMsg is sent when a controller call started from a key press
// returns. Failures are already in the controller state as an alert or a
// form error.
type opDoneMsg struct {
	err error
}

// Notify returns a controller change callback that wakes p. The controller
// also dispatches from inside Update, where a blocking Send would wait on
// the event loop that is making the call.
func Notify(p *tea.Program) func() {
	return func() { go p.Send(stateChangedMsg{}) }
}

// confirmation is a pending y/n question guarding a destructive call.
type confirmation struct {
	prompt string
	run    func(context.Context) error
}

type Model struct {
	ctx      context.Context
	ctrl     *view.Controller
	state    view.State
	keys     KeyMap
	formKeys FormKeyMap
	help     help.Model

	// Focused column and card within it.
	col, row int

	form    *form
	chat    textinput.Model
	confirm *confirmation

	width, height int
}

func New(ctx context.Context, c *view.Controller) Model {
	chat := textinput.New()
	chat.Placeholder = "Type a message..."
	chat.Prompt = "> "
	chat.CharLimit = 500
	chat.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:      ctx,
		ctrl:     c,
		state:    c.State(),
		keys:     DefaultKeyMap,
		formKeys: DefaultFormKeyMap,
		help:     help.New(),
		chat:     chat,
	}
}

func (m Model) Init() tea.Cmd {
	return m.do(m.ctrl.Load)
}

// do runs f off the update loop.
func (m Model) do(f func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: f(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case stateChangedMsg, opDoneMsg:
		m.refresh()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh takes a new snapshot and brings focus, forms and the chat input
// in line with it.
func (m *Model) refresh() {
	m.state = m.ctrl.State()

	cols := columns(m.state)
	m.col = clamp(m.col, len(cols))
	if len(cols) > 0 {
		m.row = clamp(m.row, len(cols[m.col].chores))
	} else {
		m.row = 0
	}

	m.syncForm()
	if m.state.Modals.Chat {
		m.chat.Focus()
	} else {
		m.chat.Blur()
	}
}

// syncForm drops the form whose modal closed and builds one for a modal
// that opened. Only one form is shown at a time.
func (m *Model) syncForm() {
	s := m.state
	if m.form != nil && !modalOpen(s.Modals, m.form.kind) {
		m.form = nil
	}
	if m.form != nil {
		return
	}
	switch {
	case s.Modals.CreateChore:
		m.form = createChoreForm(s)
	case s.Modals.EditChore && s.EditingChore != nil:
		m.form = editChoreForm(s)
	case s.Modals.AddUser:
		m.form = addUserForm(s)
	case s.Modals.EditUser && s.EditingUser != nil:
		m.form = editUserForm(s)
	}
}

func modalOpen(ms view.Modals, k view.ModalKind) bool {
	switch k {
	case view.ModalCreateChore:
		return ms.CreateChore
	case view.ModalAddUser:
		return ms.AddUser
	case view.ModalEditUser:
		return ms.EditUser
	case view.ModalEditChore:
		return ms.EditChore
	case view.ModalChat:
		return ms.Chat
	}
	return false
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// handleKey routes input to the innermost layer: alert, confirmation,
// form, chat, then the calendar.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.state.Alert != "":
		if key.Matches(msg, m.formKeys.Submit, m.formKeys.Close) {
			m.ctrl.DismissAlert()
			m.refresh()
		}
		return m, nil
	case m.confirm != nil:
		return m.handleConfirmKeys(msg)
	case m.form != nil:
		return m.handleFormKeys(msg)
	case m.state.Modals.Chat:
		return m.handleChatKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PreviousDay):
		m.row = 0
		return m, m.do(m.ctrl.PreviousDay)
	case key.Matches(msg, m.keys.NextDay):
		m.row = 0
		return m, m.do(m.ctrl.NextDay)
	case key.Matches(msg, m.keys.Today):
		m.row = 0
		return m, m.do(m.ctrl.Today)

	case key.Matches(msg, m.keys.NextColumn):
		if n := len(columns(m.state)); n > 0 {
			m.col = (m.col + 1) % n
			m.row = 0
		}
	case key.Matches(msg, m.keys.PreviousColumn):
		if n := len(columns(m.state)); n > 0 {
			m.col = (m.col - 1 + n) % n
			m.row = 0
		}
	case key.Matches(msg, m.keys.Down):
		if col, ok := m.focusedColumn(); ok {
			m.row = clamp(m.row+1, len(col.chores))
		}
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}

	case key.Matches(msg, m.keys.AddChore):
		var userID int64
		if col, ok := m.focusedColumn(); ok && !col.unknown {
			userID = col.user.ID
		}
		m.ctrl.OpenCreateChore(userID)
		m.refresh()
	case key.Matches(msg, m.keys.AddUser):
		m.ctrl.OpenAddUser()
		m.refresh()
	case key.Matches(msg, m.keys.EditChore):
		if c, ok := m.focusedChore(); ok && m.ctrl.OpenEditChore(c.ID) == nil {
			m.refresh()
		}
	case key.Matches(msg, m.keys.EditUser):
		if col, ok := m.focusedColumn(); ok && !col.unknown && m.ctrl.OpenEditUser(col.user.ID) == nil {
			m.refresh()
		}
	case key.Matches(msg, m.keys.DeleteChore):
		if c, ok := m.focusedChore(); ok {
			id := c.ID
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete %q?", c.Title),
				run:    func(ctx context.Context) error { return m.ctrl.DeleteChore(ctx, id) },
			}
		}
	case key.Matches(msg, m.keys.DeleteUser):
		if col, ok := m.focusedColumn(); ok && !col.unknown {
			id := col.user.ID
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete %s? Their chores will remain.", col.user.Name),
				run:    func(ctx context.Context) error { return m.ctrl.DeleteUser(ctx, id) },
			}
		}

	case key.Matches(msg, m.keys.Chat):
		m.ctrl.ToggleChat()
		m.refresh()
	}
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		return m, m.do(c.run)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch {
	case key.Matches(msg, m.formKeys.Close):
		m.ctrl.CloseModal(f.kind)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.formKeys.Submit):
		return m, m.submit(f)
	}
	f.update(msg, m.formKeys)
	return m, nil
}

func (m Model) submit(f *form) tea.Cmd {
	loc := m.state.Day.Location()
	switch f.kind {
	case view.ModalCreateChore:
		in := f.choreForm(loc)
		return m.do(func(ctx context.Context) error { return m.ctrl.CreateChore(ctx, in) })
	case view.ModalEditChore:
		d := f.choreDraft(loc)
		return m.do(func(ctx context.Context) error { return m.ctrl.UpdateChore(ctx, d) })
	case view.ModalAddUser:
		name := f.text(fieldName)
		return m.do(func(ctx context.Context) error { return m.ctrl.AddUser(ctx, name) })
	case view.ModalEditUser:
		d := f.userDraft()
		return m.do(func(ctx context.Context) error { return m.ctrl.UpdateUser(ctx, d) })
	}
	return nil
}

func (m Model) handleChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Close):
		m.ctrl.ToggleChat()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.formKeys.Submit):
		text := m.chat.Value()
		m.chat.Reset()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		return m, m.do(func(ctx context.Context) error {
			m.ctrl.SendChat(ctx, text)
			return nil
		})
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m Model) focusedColumn() (column, bool) {
	cols := columns(m.state)
	if len(cols) == 0 {
		return column{}, false
	}
	return cols[clamp(m.col, len(cols))], true
}

func (m Model) focusedChore() (model.Chore, bool) {
	col, ok := m.focusedColumn()
	if !ok || len(col.chores) == 0 {
		return model.Chore{}, false
	}
	return col.chores[clamp(m.row, len(col.chores))], true
}
