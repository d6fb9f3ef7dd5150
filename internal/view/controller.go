package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/chorecal/internal/backend"
	"github.com/dukerupert/chorecal/internal/command"
	"github.com/dukerupert/chorecal/internal/model"
)

// DefaultReplyDelay is how long the bot waits before answering in the chat
// transcript.
const DefaultReplyDelay = 300 * time.Millisecond

var ErrNotFound = errors.New("not found")

// Backend is the subset of the REST client the controller uses.
type Backend interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, in backend.UserInput) (model.User, error)
	UpdateUser(ctx context.Context, id int64, in backend.UserInput) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListChores(ctx context.Context, day time.Time) ([]model.Chore, error)
	CreateChore(ctx context.Context, in backend.ChoreInput) (model.Chore, error)
	UpdateChore(ctx context.Context, id int64, in backend.ChoreInput) (model.Chore, error)
	DeleteChore(ctx context.Context, id int64) error
	Chat(ctx context.Context, sessionID, message string) (string, error)
}

// ValidationError is a form input rejected before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type Options struct {
	SessionID string
	Location  *time.Location
	Now       func() time.Time
	// ReplyDelay defaults to DefaultReplyDelay. A negative value means no
	// delay.
	ReplyDelay time.Duration
	Logger     *slog.Logger
	// OnChange fires after every state change, outside the controller lock.
	OnChange func()
	// AfterFunc schedules delayed chat replies. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

type Controller struct {
	backend    Backend
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	replyDelay time.Duration
	afterFunc  func(time.Duration, func())

	mu       sync.Mutex
	state    State
	choreSeq uint64
	onChange func()

	replies sync.WaitGroup
}

func New(b Backend, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch {
	case opts.ReplyDelay == 0:
		opts.ReplyDelay = DefaultReplyDelay
	case opts.ReplyDelay < 0:
		opts.ReplyDelay = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	c := &Controller{
		backend:    b,
		logger:     opts.Logger.With("component", "view", "session", opts.SessionID),
		loc:        opts.Location,
		now:        opts.Now,
		replyDelay: opts.ReplyDelay,
		afterFunc:  opts.AfterFunc,
		onChange:   opts.OnChange,
	}
	c.state = State{
		SessionID:  opts.SessionID,
		Day:        model.StartOfDay(c.now().In(c.loc)),
		Transcript: []model.ChatMessage{{Role: model.RoleBot, Text: Greeting}},
	}
	return c
}

// SetOnChange replaces the change callback.
func (c *Controller) SetOnChange(f func()) {
	c.mu.Lock()
	c.onChange = f
	c.mu.Unlock()
}

// State returns a snapshot safe to read while the controller keeps working.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until every scheduled chat reply has been delivered.
func (c *Controller) Wait() {
	c.replies.Wait()
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	c.state = Reduce(c.state, a)
	f := c.onChange
	c.mu.Unlock()
	if f != nil {
		f()
	}
}

// Load fetches users and the selected day's chores.
func (c *Controller) Load(ctx context.Context) error {
	return errors.Join(c.loadUsers(ctx), c.loadChores(ctx))
}

func (c *Controller) loadUsers(ctx context.Context) error {
	users, err := c.backend.ListUsers(ctx)
	if err != nil {
		c.logger.Error("failed to load users", "error", err)
		return fmt.Errorf("load users: %w", err)
	}
	c.dispatch(UsersLoaded{Users: users})
	return nil
}

func (c *Controller) loadChores(ctx context.Context) error {
	c.mu.Lock()
	c.choreSeq++
	seq := c.choreSeq
	day := c.state.Day
	c.mu.Unlock()

	chores, err := c.backend.ListChores(ctx, day)
	if err != nil {
		c.logger.Error("failed to load chores", "day", day.Format(model.DateLayout), "error", err)
		c.dispatch(ChoresFailed{Day: day, Seq: seq})
		return fmt.Errorf("load chores: %w", err)
	}
	c.dispatch(ChoresLoaded{Day: day, Seq: seq, Chores: chores})
	return nil
}

func (c *Controller) PreviousDay(ctx context.Context) error {
	c.dispatch(DayShifted{Days: -1})
	return c.loadChores(ctx)
}

func (c *Controller) NextDay(ctx context.Context) error {
	c.dispatch(DayShifted{Days: 1})
	return c.loadChores(ctx)
}

func (c *Controller) Today(ctx context.Context) error {
	c.dispatch(DayChanged{Day: c.now().In(c.loc)})
	return c.loadChores(ctx)
}

func (c *Controller) OpenCreateChore(userID int64) {
	c.dispatch(CreateChoreOpened{UserID: userID})
}

func (c *Controller) OpenAddUser() {
	c.dispatch(AddUserOpened{})
}

func (c *Controller) OpenEditUser(id int64) error {
	u, ok := c.State().User(id)
	if !ok {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	c.dispatch(UserEditOpened{Draft: UserDraft{ID: u.ID, Name: u.Name, Color: u.Color}})
	return nil
}

func (c *Controller) OpenEditChore(id int64) error {
	ch, ok := c.State().Chore(id)
	if !ok {
		return fmt.Errorf("chore %d: %w", id, ErrNotFound)
	}
	c.dispatch(ChoreEditOpened{Draft: ChoreDraft{
		ID:          ch.ID,
		Date:        model.StartOfDay(ch.At),
		Time:        ch.At.Format(model.ShortTimeLayout),
		UserID:      ch.UserID,
		Title:       ch.Title,
		Description: ch.Description,
	}})
	return nil
}

func (c *Controller) CloseModal(m ModalKind) {
	c.dispatch(ModalClosed{Modal: m})
}

func (c *Controller) ToggleChat() {
	c.dispatch(ChatToggled{})
}

func (c *Controller) DismissAlert() {
	c.dispatch(AlertDismissed{})
}

func (c *Controller) CreateChore(ctx context.Context, form ChoreForm) error {
	c.dispatch(CreateFormEdited{Form: form})

	in, err := c.choreInput(form.Date, form.Time, form.UserID, form.Title, form.Description)
	if err != nil {
		return c.reject(err)
	}
	if _, err := c.backend.CreateChore(ctx, in); err != nil {
		return c.fail("Failed to create chore", fmt.Errorf("create chore: %w", err))
	}
	c.loadChores(ctx)
	c.dispatch(ChoreCreated{})
	return nil
}

func (c *Controller) UpdateChore(ctx context.Context, draft ChoreDraft) error {
	c.dispatch(ChoreDraftEdited{Draft: draft})

	in, err := c.choreInput(draft.Date, draft.Time, draft.UserID, draft.Title, draft.Description)
	if err != nil {
		return c.reject(err)
	}
	if _, err := c.backend.UpdateChore(ctx, draft.ID, in); err != nil {
		return c.fail("Failed to update chore", fmt.Errorf("update chore %d: %w", draft.ID, err))
	}
	c.loadChores(ctx)
	c.dispatch(ChoreUpdated{})
	return nil
}

func (c *Controller) DeleteChore(ctx context.Context, id int64) error {
	if err := c.backend.DeleteChore(ctx, id); err != nil {
		return c.fail("Failed to delete chore", fmt.Errorf("delete chore %d: %w", id, err))
	}
	c.loadChores(ctx)
	return nil
}

func (c *Controller) AddUser(ctx context.Context, name string) error {
	c.dispatch(NewUserNameEdited{Name: name})

	name = strings.TrimSpace(name)
	if name == "" {
		return c.reject(&ValidationError{Field: "name", Message: "Name is required"})
	}
	if err := c.createUser(ctx, name); err != nil {
		return c.fail("Failed to add user", err)
	}
	c.loadUsers(ctx)
	c.dispatch(UserCreated{})
	return nil
}

func (c *Controller) UpdateUser(ctx context.Context, draft UserDraft) error {
	c.dispatch(UserDraftEdited{Draft: draft})

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return c.reject(&ValidationError{Field: "name", Message: "Name is required"})
	}
	if !model.ValidColor(draft.Color) {
		return c.reject(&ValidationError{Field: "color", Message: "Color must look like #RRGGBB"})
	}
	in := backend.UserInput{Name: name, Color: draft.Color}
	if _, err := c.backend.UpdateUser(ctx, draft.ID, in); err != nil {
		return c.fail("Failed to update user", fmt.Errorf("update user %d: %w", draft.ID, err))
	}
	c.loadUsers(ctx)
	c.dispatch(UserUpdated{})
	return nil
}

// DeleteUser removes the user. Their chores stay with the backend and show
// up under the unknown owner.
func (c *Controller) DeleteUser(ctx context.Context, id int64) error {
	if err := c.backend.DeleteUser(ctx, id); err != nil {
		return c.fail("Failed to delete user", fmt.Errorf("delete user %d: %w", id, err))
	}
	c.loadUsers(ctx)
	return nil
}

// createUser picks the next palette color from the current user count.
func (c *Controller) createUser(ctx context.Context, name string) error {
	n := len(c.State().Users)
	in := backend.UserInput{Name: name, Color: model.PaletteColor(n)}
	if _, err := c.backend.CreateUser(ctx, in); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (c *Controller) choreInput(date time.Time, clock string, userID int64, title, description string) (backend.ChoreInput, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return backend.ChoreInput{}, &ValidationError{Field: "title", Message: "Title is required"}
	}
	if date.IsZero() {
		return backend.ChoreInput{}, &ValidationError{Field: "date", Message: "Date is required"}
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return backend.ChoreInput{}, &ValidationError{Field: "time", Message: "Time is required"}
	}
	at, err := backend.ParseDateTime(date.Format(model.DateLayout), clock, c.loc)
	if err != nil {
		return backend.ChoreInput{}, &ValidationError{Field: "time", Message: "Time must be HH:MM"}
	}
	if userID == 0 {
		return backend.ChoreInput{}, &ValidationError{Field: "user", Message: "Choose who the chore is for"}
	}
	if _, ok := c.State().User(userID); !ok {
		return backend.ChoreInput{}, &ValidationError{Field: "user", Message: "That user no longer exists"}
	}
	return backend.ChoreInput{
		Title:       title,
		Description: strings.TrimSpace(description),
		At:          at,
		UserID:      userID,
	}, nil
}

func (c *Controller) reject(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.dispatch(FormRejected{Message: ve.Message})
	}
	return err
}

func (c *Controller) fail(alert string, err error) error {
	c.logger.Error(strings.ToLower(alert), "error", err)
	c.dispatch(AlertRaised{Text: alert})
	return err
}

// SendChat appends the user's message and asks the assistant. When the
// assistant cannot be reached the local command interpreter answers
// instead. Either way the reply lands after the reply delay, followed by a
// reload of users and chores.
func (c *Controller) SendChat(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.dispatch(MessageAppended{Message: model.ChatMessage{Role: model.RoleUser, Text: text}})

	st := c.State()
	reply, err := c.backend.Chat(ctx, st.SessionID, text)
	if err != nil {
		c.logger.Warn("assistant unavailable, using local commands", "error", err)
		reply = c.runLocal(ctx, text, st)
	}
	c.replyLater(ctx, reply)
}

func (c *Controller) runLocal(ctx context.Context, text string, st State) string {
	res := command.Interpret(text, command.Context{
		Users:  st.Users,
		Chores: st.Chores,
		Day:    st.Day,
	})

	switch res.Effect.Kind {
	case command.KindAddUser:
		if err := c.createUser(ctx, res.Effect.Name); err != nil {
			c.logger.Error("chat add user failed", "name", res.Effect.Name, "error", err)
			return command.AddUserReply(res.Effect.Name, false)
		}
	case command.KindOpenChoreForm:
		c.dispatch(CreateChoreOpened{UserID: res.Effect.UserID})
		c.dispatch(ModalClosed{Modal: ModalChat})
	case command.KindJumpToday:
		c.Today(ctx)
	}
	return res.Reply
}

func (c *Controller) replyLater(ctx context.Context, text string) {
	bg := context.WithoutCancel(ctx)
	c.replies.Add(1)
	c.afterFunc(c.replyDelay, func() {
		defer c.replies.Done()
		c.dispatch(MessageAppended{Message: model.ChatMessage{Role: model.RoleBot, Text: text}})
		c.Load(bg)
	})
}
