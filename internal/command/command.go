// Package command interprets the chat panel's built-in commands. It is the
// fallback used when the remote assistant cannot be reached.
package command

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dukerupert/chorecal/internal/model"
)

// HelpText is the fixed command summary returned for "help" and "?".
const HelpText = `Here's what I can do:
• "add user [name]" - Add a new user
• "add chore for [user]" - Add a chore for a user
• "list users" - Show all users
• "list chores" - Show today's chores
• "today" - Jump to today's date
• "help" - Show this help message`

const (
	NotUnderstood   = `I didn't understand that. Type "help" to see what I can do!`
	JumpedToToday   = "✓ Jumped to today!"
	MissingUserName = `Please provide a user name. Example: "add user John"`
	MissingChoreFor = `Please specify a user. Example: "add chore for Alice"`
	NoUsers         = "No users found. Add a user first!"

	addUserPrefix = "add user "
	dayLayout     = "January 2"
)

var forUserRegexp = regexp.MustCompile(`(?i)for (\w+)`)

type Kind int

const (
	KindNone Kind = iota
	// KindAddUser asks the caller to create a user named Effect.Name.
	KindAddUser
	// KindOpenChoreForm asks the caller to open the create-chore form with
	// Effect.UserID pre-selected on the current day.
	KindOpenChoreForm
	// KindJumpToday asks the caller to move the calendar to today.
	KindJumpToday
)

// Effect is the state change a command asks for. The interpreter never
// performs it itself.
type Effect struct {
	Kind   Kind
	Name   string
	UserID int64
}

// Context is the calendar state a command can read.
type Context struct {
	Users  []model.User
	Chores []model.Chore
	Day    time.Time
}

// Result is the bot reply plus the requested effect. For KindAddUser the
// reply is only valid once the user has actually been created; callers use
// AddUserReply to build the final text.
type Result struct {
	Reply  string
	Effect Effect
}

// Interpret matches input against the built-in commands. Matching is
// case-insensitive and the first matching command wins.
func Interpret(input string, c Context) Result {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	switch {
	case lower == strings.TrimSpace(addUserPrefix), strings.HasPrefix(lower, addUserPrefix):
		var name string
		if len(trimmed) > len(addUserPrefix) {
			name = strings.TrimSpace(trimmed[len(addUserPrefix):])
		}
		if name == "" {
			return Result{Reply: MissingUserName}
		}
		return Result{
			Reply:  AddUserReply(name, true),
			Effect: Effect{Kind: KindAddUser, Name: name},
		}

	case strings.Contains(lower, "add chore"):
		return addChore(trimmed, c.Users)

	case strings.Contains(lower, "list users"), strings.Contains(lower, "show users"):
		return Result{Reply: listUsers(c.Users)}

	case strings.Contains(lower, "list chores"), strings.Contains(lower, "show chores"):
		return Result{Reply: listChores(c)}

	case strings.Contains(lower, "today"):
		return Result{Reply: JumpedToToday, Effect: Effect{Kind: KindJumpToday}}

	case strings.Contains(lower, "help"), lower == "?":
		return Result{Reply: HelpText}
	}

	return Result{Reply: NotUnderstood}
}

// AddUserReply is the bot's answer once the add-user effect has run.
func AddUserReply(name string, created bool) string {
	if created {
		return fmt.Sprintf("✓ User \"%s\" has been added successfully!", name)
	}
	return fmt.Sprintf("Sorry, I couldn't add user \"%s\".", name)
}

func addChore(input string, users []model.User) Result {
	m := forUserRegexp.FindStringSubmatch(input)
	if m == nil {
		return Result{Reply: MissingChoreFor}
	}
	wanted := m[1]
	for _, u := range users {
		if strings.EqualFold(u.Name, wanted) {
			return Result{
				Reply:  fmt.Sprintf("Opening chore form for %s...", u.Name),
				Effect: Effect{Kind: KindOpenChoreForm, UserID: u.ID},
			}
		}
	}
	return Result{Reply: fmt.Sprintf("User \"%s\" not found. Available users: %s", wanted, userNames(users))}
}

func userNames(users []model.User) string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}

func listUsers(users []model.User) string {
	if len(users) == 0 {
		return NoUsers
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current users (%d):", len(users))
	for _, u := range users {
		b.WriteString("\n• ")
		b.WriteString(u.Name)
	}
	return b.String()
}

func listChores(c Context) string {
	day := c.Day.Format(dayLayout)

	var todays []model.Chore
	for _, ch := range c.Chores {
		if ch.OnDay(c.Day) {
			todays = append(todays, ch)
		}
	}
	if len(todays) == 0 {
		return "No chores scheduled for " + day
	}

	owners := make(map[int64]string, len(c.Users))
	for _, u := range c.Users {
		owners[u.ID] = u.Name
	}

	var b strings.Builder
	b.WriteString("Chores for " + day + ":")
	for _, ch := range todays {
		owner, ok := owners[ch.UserID]
		if !ok {
			owner = "Unknown"
		}
		fmt.Fprintf(&b, "\n• %s - %s at %s", ch.Title, owner, ch.At.Format(model.CardTimeLayout))
	}
	return b.String()
}
