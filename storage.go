package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrDuplicate is returned when an insert collides with a unique
// column (taken username, reused room code).
var ErrDuplicate = errors.New("duplicate entry")

type User struct {
	ID       int64
	Name     string
	Username string
	Password string // bcrypt hash
}

type Room struct {
	ID         int64
	Code       string
	MaxPlayers int
	CreatedAt  time.Time
}

// Store persists users and rooms in SQLite. Gameplay state never
// touches it; only the HTTP signup/login and room-creation endpoints
// do.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    room_code TEXT NOT NULL UNIQUE,
    max_players INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
`

// openStore opens (or creates) the SQLite database and ensures the
// schema exists.
func openStore(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, name, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, username, password) VALUES (?, ?, ?)`,
		name, username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) FindUserByName(ctx context.Context, username string) (User, bool, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, username, password FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Name, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("select user: %w", err)
	}
	return u, true, nil
}

func (s *Store) CreateRoom(ctx context.Context, code string, maxPlayers int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (room_code, max_players, created_at) VALUES (?, ?, ?)`,
		code, maxPlayers, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert room: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) FindRoomByCode(ctx context.Context, code string) (Room, bool, error) {
	var (
		r         Room
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, room_code, max_players, created_at FROM rooms WHERE room_code = ?`,
		code,
	).Scan(&r.ID, &r.Code, &r.MaxPlayers, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, false, nil
	}
	if err != nil {
		return Room{}, false, fmt.Errorf("select room: %w", err)
	}
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	return r, true, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
