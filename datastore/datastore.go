// Package datastore is a small json-server-compatible backend for local
// development: generic resource storage for /users and /news over SQLite.
// Like json-server 1.x it returns top-level ids as strings, which is what the
// portal's id normalization exists for.
package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// User is a stored portal account.
type User struct {
	ID    int64
	Name  string
	Email string
}

// News is a stored news item. Comments are kept as the JSON array the client
// last wrote; the store never looks inside it.
type News struct {
	ID       int64
	Title    string
	Body     string
	AuthorID int64
	Comments json.RawMessage
}

// NewsUpdate is a partial news update. Nil fields are left unchanged.
type NewsUpdate struct {
	Title    *string
	Body     *string
	Comments *json.RawMessage
}

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		author_id INTEGER NOT NULL,
		comments TEXT NOT NULL DEFAULT '[]'
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Seed inserts a default set of users and news items when the store is empty.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	users := []User{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
	}
	for _, u := range users {
		if _, err := s.conn.ExecContext(ctx,
			`INSERT INTO users (name, email) VALUES (?, ?)`, u.Name, u.Email); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Name, err)
		}
	}

	items := []News{
		{Title: "Welcome to the portal", Body: "This is the first seeded news item for local development.", AuthorID: 1},
		{Title: "Second seeded story", Body: "Another example article so the list has something to show.", AuthorID: 2},
	}
	for _, it := range items {
		if _, err := s.conn.ExecContext(ctx,
			`INSERT INTO news (title, body, author_id, comments) VALUES (?, ?, ?, '[]')`,
			it.Title, it.Body, it.AuthorID); err != nil {
			return fmt.Errorf("seed news %q: %w", it.Title, err)
		}
	}
	return nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser returns one user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email FROM users WHERE id = ?`, id).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// ListNews returns all news items ordered by id.
func (s *Store) ListNews(ctx context.Context) ([]News, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, body, author_id, comments FROM news ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []News
	for rows.Next() {
		var it News
		var comments string
		if err := rows.Scan(&it.ID, &it.Title, &it.Body, &it.AuthorID, &comments); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		it.Comments = json.RawMessage(comments)
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetNews returns one news item by id.
func (s *Store) GetNews(ctx context.Context, id int64) (*News, error) {
	var it News
	var comments string
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, body, author_id, comments FROM news WHERE id = ?`, id).
		Scan(&it.ID, &it.Title, &it.Body, &it.AuthorID, &comments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news %d: %w", id, err)
	}
	it.Comments = json.RawMessage(comments)
	return &it, nil
}

// CreateNews inserts a news item and returns it with its assigned id.
func (s *Store) CreateNews(ctx context.Context, it News) (*News, error) {
	if len(it.Comments) == 0 {
		it.Comments = json.RawMessage("[]")
	}
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO news (title, body, author_id, comments) VALUES (?, ?, ?, ?)`,
		it.Title, it.Body, it.AuthorID, string(it.Comments))
	if err != nil {
		return nil, fmt.Errorf("insert news: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("news id: %w", err)
	}
	it.ID = id
	return &it, nil
}

// UpdateNews applies a partial update and returns the updated item.
func (s *Store) UpdateNews(ctx context.Context, id int64, upd NewsUpdate) (*News, error) {
	it, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		it.Title = *upd.Title
	}
	if upd.Body != nil {
		it.Body = *upd.Body
	}
	if upd.Comments != nil {
		it.Comments = *upd.Comments
	}

	_, err = s.conn.ExecContext(ctx,
		`UPDATE news SET title = ?, body = ?, comments = ? WHERE id = ?`,
		it.Title, it.Body, string(it.Comments), id)
	if err != nil {
		return nil, fmt.Errorf("update news %d: %w", id, err)
	}
	return it, nil
}

// DeleteNews removes a news item.
func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete news %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete news %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
