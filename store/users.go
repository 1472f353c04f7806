package store

import (
	"database/sql"

	"flockr-server/models"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, password_hash, name_first, name_last, handle, permission_id, COALESCE(profile_img_url, '')`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.NameFirst, &user.NameLast,
		&user.Handle, &user.PermissionID, &user.ProfileImgURL)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// CreateUser stores a new user. The first user ever stored becomes a
// global owner; everyone after is a member.
func (s *Store) CreateUser(email, password, nameFirst, nameLast, handle string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}
	permission := models.PermissionMember
	if count == 0 {
		permission = models.PermissionOwner
	}

	result, err := tx.Exec(`
		INSERT INTO users (email, password_hash, name_first, name_last, handle, permission_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, email, string(hash), nameFirst, nameLast, handle, permission)
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "store.CreateUser")
	}

	return &models.User{
		ID:           int(id),
		Email:        email,
		PasswordHash: string(hash),
		NameFirst:    nameFirst,
		NameLast:     nameLast,
		Handle:       handle,
		PermissionID: permission,
	}, nil
}

func (s *Store) GetUserByID(id int) (*models.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *Store) EmailExists(email string) (bool, error) {
	return s.exists(`SELECT 1 FROM users WHERE email = ?`, email)
}

func (s *Store) HandleExists(handle string) (bool, error) {
	return s.exists(`SELECT 1 FROM users WHERE handle = ?`, handle)
}

func (s *Store) exists(query string, args ...interface{}) (bool, error) {
	var one int
	err := s.db.QueryRow(query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "store.exists")
	}
	return true, nil
}

// GetAllUsers returns every user in registration order.
func (s *Store) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "store.GetAllUsers")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "store.GetAllUsers")
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Store) ValidatePassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

func (s *Store) UpdateUserName(id int, nameFirst, nameLast string) error {
	_, err := s.db.Exec(`UPDATE users SET name_first = ?, name_last = ? WHERE id = ?`, nameFirst, nameLast, id)
	return errors.Wrap(err, "store.UpdateUserName")
}

func (s *Store) UpdateUserEmail(id int, email string) error {
	_, err := s.db.Exec(`UPDATE users SET email = ? WHERE id = ?`, email, id)
	return errors.Wrap(err, "store.UpdateUserEmail")
}

func (s *Store) UpdateUserHandle(id int, handle string) error {
	_, err := s.db.Exec(`UPDATE users SET handle = ? WHERE id = ?`, handle, id)
	return errors.Wrap(err, "store.UpdateUserHandle")
}

func (s *Store) UpdateUserPermission(id, permission int) error {
	_, err := s.db.Exec(`UPDATE users SET permission_id = ? WHERE id = ?`, permission, id)
	return errors.Wrap(err, "store.UpdateUserPermission")
}

// SetResetCode records code as the user's outstanding password reset
// code, replacing any earlier one.
func (s *Store) SetResetCode(id int, code string) error {
	_, err := s.db.Exec(`UPDATE users SET reset_code = ? WHERE id = ?`, code, id)
	return errors.Wrap(err, "store.SetResetCode")
}

// ResetPassword consumes a reset code and sets the matching user's
// password. It returns ErrNotFound if no user holds the code.
func (s *Store) ResetPassword(code, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return 0, errors.Wrap(err, "store.ResetPassword")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "store.ResetPassword")
	}
	defer tx.Rollback()

	var id int
	if err := tx.QueryRow(`SELECT id FROM users WHERE reset_code = ?`, code).Scan(&id); err != nil {
		return 0, notFound(err)
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash = ?, reset_code = NULL WHERE id = ?`, string(hash), id); err != nil {
		return 0, errors.Wrap(err, "store.ResetPassword")
	}
	return id, tx.Commit()
}

// CreateSession makes token the user's only live session.
func (s *Store) CreateSession(userID int, token string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions (token, user_id) VALUES (?, ?)`, token, userID)
	return errors.Wrap(err, "store.CreateSession")
}

// GetSessionUser resolves a live token to its user id.
func (s *Store) GetSessionUser(token string) (int, error) {
	var id int
	err := s.db.QueryRow(`SELECT user_id FROM sessions WHERE token = ?`, token).Scan(&id)
	if err != nil {
		return 0, notFound(err)
	}
	return id, nil
}

// GetUserToken returns the user's live token, or "" if they are logged out.
func (s *Store) GetUserToken(userID int) (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM sessions WHERE user_id = ?`, userID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return token, err
}

// DeleteSession reports whether a live session was removed.
func (s *Store) DeleteSession(token string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return false, errors.Wrap(err, "store.DeleteSession")
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
