package fakebackend

import (
	"database/sql"
	"fmt"
)

// User and Chore mirror the backend's JSON shapes.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Chore struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	UserID      int64  `json:"userId"`
}

type store struct {
	db *sql.DB
}

func (s *store) listUsers() ([]User, error) {
	rows, err := s.db.Query(`SELECT id, name, color FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Color); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *store) getUser(id int64) (*User, error) {
	var u User
	err := s.db.QueryRow(`SELECT id, name, color FROM users WHERE id = ?`, id).Scan(&u.ID, &u.Name, &u.Color)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *store) createUser(name, color string) (*User, error) {
	res, err := s.db.Exec(`INSERT INTO users (name, color) VALUES (?, ?)`, name, color)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getUser(id)
}

func (s *store) updateUser(id int64, name, color string) (*User, error) {
	if _, err := s.db.Exec(`UPDATE users SET name = ?, color = ? WHERE id = ?`, name, color, id); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.getUser(id)
}

func (s *store) deleteUser(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

const choreCols = `id, description, notes, date, time, user_id`

func scanChores(rows *sql.Rows) ([]Chore, error) {
	defer rows.Close()
	chores := []Chore{}
	for rows.Next() {
		var c Chore
		if err := rows.Scan(&c.ID, &c.Description, &c.Notes, &c.Date, &c.Time, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, c)
	}
	return chores, rows.Err()
}

func (s *store) listChores(date string) ([]Chore, error) {
	query := `SELECT ` + choreCols + ` FROM chores`
	var args []any
	if date != "" {
		query += ` WHERE date = ?`
		args = append(args, date)
	}
	rows, err := s.db.Query(query+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	return scanChores(rows)
}

func (s *store) listUserChores(userID int64, date string) ([]Chore, error) {
	rows, err := s.db.Query(`SELECT `+choreCols+` FROM chores WHERE user_id = ? AND date = ? ORDER BY time ASC`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list user chores: %w", err)
	}
	return scanChores(rows)
}

func (s *store) getChore(id int64) (*Chore, error) {
	rows, err := s.db.Query(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	chores, err := scanChores(rows)
	if err != nil || len(chores) == 0 {
		return nil, err
	}
	return &chores[0], nil
}

func (s *store) createChore(c Chore) (*Chore, error) {
	res, err := s.db.Exec(
		`INSERT INTO chores (description, notes, date, time, user_id) VALUES (?, ?, ?, ?, ?)`,
		c.Description, c.Notes, c.Date, c.Time, c.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getChore(id)
}

func (s *store) updateChore(id int64, c Chore) (*Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET description = ?, notes = ?, date = ?, time = ?, user_id = ? WHERE id = ?`,
		c.Description, c.Notes, c.Date, c.Time, c.UserID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.getChore(id)
}

func (s *store) deleteChore(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}
