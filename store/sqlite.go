package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store is the board's directory. It lives in a private in-memory SQLite
// database: nothing is written to disk and every Store starts empty.
//
// The pool is pinned to a single connection, so a transaction owns the
// whole database while it is open. Never issue a query on s.db while a
// *sql.Rows or *sql.Tx from the same Store is still open.
type Store struct {
	db       *sql.DB
	name     string
	hashCost int
}

type Option func(*Store)

// WithPasswordCost sets the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func New(opts ...Option) (*Store, error) {
	name := "flockr-" + uuid.New().String()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "store.New")
	}
	// The in-memory database vanishes with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db, name: name, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store.New")
	}

	return store, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name_first TEXT NOT NULL,
		name_last TEXT NOT NULL,
		handle TEXT UNIQUE NOT NULL,
		permission_id INTEGER NOT NULL,
		profile_img_url TEXT,
		reset_code TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_reset_code ON users(reset_code);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER UNIQUE NOT NULL REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS channels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_public BOOLEAN NOT NULL,
		creator_token TEXT NOT NULL
	);

	-- rowid order is join order
	CREATE TABLE IF NOT EXISTS channel_members (
		channel_id INTEGER NOT NULL REFERENCES channels(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (channel_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_channel_members_user ON channel_members(user_id);

	CREATE TABLE IF NOT EXISTS channel_owners (
		channel_id INTEGER NOT NULL REFERENCES channels(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (channel_id, user_id)
	);

	-- position grows with every insertion; the highest position is index 0
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY,
		channel_id INTEGER NOT NULL REFERENCES channels(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		time_created INTEGER NOT NULL,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(channel_id, position);

	CREATE TABLE IF NOT EXISTS reacts (
		message_id INTEGER NOT NULL REFERENCES messages(id),
		react_id INTEGER NOT NULL,
		PRIMARY KEY (message_id, react_id)
	);

	CREATE TABLE IF NOT EXISTS react_users (
		message_id INTEGER NOT NULL,
		react_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (message_id, react_id, user_id),
		FOREIGN KEY (message_id, react_id) REFERENCES reacts(message_id, react_id)
	);

	CREATE TABLE IF NOT EXISTS pending_messages (
		id INTEGER PRIMARY KEY,
		channel_id INTEGER NOT NULL REFERENCES channels(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		deliver_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS standups (
		channel_id INTEGER PRIMARY KEY REFERENCES channels(id),
		starter_id INTEGER NOT NULL REFERENCES users(id),
		time_finish INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS standup_lines (
		channel_id INTEGER NOT NULL REFERENCES standups(channel_id),
		line TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
`

const (
	counterMessageID       = "message_id"
	counterMessagePosition = "message_position"
)

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "store.init")
	}
	return s.seedCounters(s.db)
}

func (s *Store) seedCounters(q querier) error {
	for _, name := range []string{counterMessageID, counterMessagePosition} {
		if _, err := q.Exec(`INSERT OR IGNORE INTO counters (name, value) VALUES (?, 0)`, name); err != nil {
			return errors.Wrap(err, "store.seedCounters")
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reset empties every table and restarts all identifiers at 1.
func (s *Store) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.Reset")
	}
	defer tx.Rollback()

	// children before parents
	tables := []string{
		"standup_lines", "standups", "pending_messages",
		"react_users", "reacts", "messages",
		"channel_owners", "channel_members", "channels",
		"sessions", "users", "counters",
	}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(err, "store.Reset: clearing %s", table)
		}
	}
	if _, err := tx.Exec(`DELETE FROM sqlite_sequence`); err != nil {
		return errors.Wrap(err, "store.Reset")
	}
	if err := s.seedCounters(tx); err != nil {
		return errors.Wrap(err, "store.Reset")
	}
	return tx.Commit()
}

// next advances the named counter and returns its new value.
func (s *Store) next(q querier, name string) (int, error) {
	if _, err := q.Exec(`UPDATE counters SET value = value + 1 WHERE name = ?`, name); err != nil {
		return 0, errors.Wrap(err, "store.next")
	}
	var value int
	err := q.QueryRow(`SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	return value, err
}

// NextMessageID reserves a message identifier. Identifiers are never
// handed out twice, even if the message is later removed.
func (s *Store) NextMessageID() (int, error) {
	return s.next(s.db, counterMessageID)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
