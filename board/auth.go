package board

import (
	"errors"
	"log"
	"unicode/utf8"

	"flockr-server/apperr"
	"flockr-server/models"
	"flockr-server/store"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 6
	maxNameLength     = 50
)

func (b *Board) Register(email, password, nameFirst, nameLast string) (*models.AuthResponse, error) {
	var resp *models.AuthResponse
	err := b.exec(func() error {
		if err := checkNames(nameFirst, nameLast); err != nil {
			return err
		}
		if len(password) < minPasswordLength {
			return apperr.Input("Password cannot be less than 6 characters long")
		}
		taken, err := b.store.EmailExists(email)
		if err != nil {
			return internal(err)
		}
		if taken {
			return apperr.Input("Email address is already being used by another user")
		}
		if !b.validEmail(email) {
			return apperr.Input("Invalid email address entered")
		}

		handle, err := b.generateHandle(nameFirst, nameLast)
		if err != nil {
			return internal(err)
		}
		user, err := b.store.CreateUser(email, password, nameFirst, nameLast, handle)
		if err != nil {
			return internal(err)
		}
		token, err := b.startSession(user.ID)
		if err != nil {
			return err
		}

		log.Printf("[BOARD] Registered user %d (%s)", user.ID, handle)
		resp = &models.AuthResponse{UserID: user.ID, Token: token}
		return nil
	})
	return resp, err
}

func checkNames(nameFirst, nameLast string) error {
	if n := utf8.RuneCountInString(nameFirst); n < 1 || n > maxNameLength {
		return apperr.Input("Invalid first name")
	}
	if n := utf8.RuneCountInString(nameLast); n < 1 || n > maxNameLength {
		return apperr.Input("Invalid last name")
	}
	return nil
}

func (b *Board) Login(email, password string) (*models.AuthResponse, error) {
	var resp *models.AuthResponse
	err := b.exec(func() error {
		if !b.validEmail(email) {
			return apperr.Input("Invalid email address entered")
		}
		user, err := b.store.GetUserByEmail(email)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("Email entered does not belong to a user")
		}
		if err != nil {
			return internal(err)
		}
		if !b.store.ValidatePassword(user, password) {
			return apperr.Input("Password entered is incorrect")
		}

		token, err := b.startSession(user.ID)
		if err != nil {
			return err
		}
		resp = &models.AuthResponse{UserID: user.ID, Token: token}
		return nil
	})
	return resp, err
}

func (b *Board) startSession(userID int) (string, error) {
	token, err := b.issuer.Issue(userID)
	if err != nil {
		return "", apperr.Internal("issuing token", err)
	}
	if err := b.store.CreateSession(userID, token); err != nil {
		return "", internal(err)
	}
	return token, nil
}

// Logout ends the session and reports whether the token was live.
func (b *Board) Logout(token string) bool {
	var ok bool
	err := b.exec(func() error {
		removed, err := b.store.DeleteSession(token)
		if err != nil {
			return internal(err)
		}
		ok = removed
		return nil
	})
	if err != nil {
		log.Printf("[BOARD] Logout failed: %v", err)
		return false
	}
	return ok
}

func (b *Board) PasswordResetRequest(email string) error {
	return b.exec(func() error {
		user, err := b.store.GetUserByEmail(email)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("User is not registered")
		}
		if err != nil {
			return internal(err)
		}

		code := uuid.New().String()
		if err := b.store.SetResetCode(user.ID, code); err != nil {
			return internal(err)
		}
		if err := b.mailer.SendResetCode(user.Email, code); err != nil {
			return apperr.Internal("sending reset code", err)
		}
		return nil
	})
}

func (b *Board) PasswordResetReset(code, newPassword string) error {
	return b.exec(func() error {
		if len(newPassword) < minPasswordLength {
			return apperr.Input("Password cannot be less than 6 characters long")
		}
		if code == "" {
			return apperr.Input("Invalid reset code entered")
		}
		_, err := b.store.ResetPassword(code, newPassword)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("Invalid reset code entered")
		}
		if err != nil {
			return internal(err)
		}
		return nil
	})
}

// Authenticate resolves a live session token to its user id.
func (b *Board) Authenticate(token string) (int, error) {
	var id int
	err := b.exec(func() error {
		var err error
		id, err = b.userID(token)
		return err
	})
	return id, err
}

// userID resolves token on the loop. An unknown or ended session is an
// access error.
func (b *Board) userID(token string) (int, error) {
	id, err := b.store.GetSessionUser(token)
	if errors.Is(err, store.ErrNotFound) {
		return 0, apperr.Access("Invalid token entered")
	}
	if err != nil {
		return 0, internal(err)
	}
	return id, nil
}

func (b *Board) caller(token string) (*models.User, error) {
	id, err := b.userID(token)
	if err != nil {
		return nil, err
	}
	user, err := b.store.GetUserByID(id)
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}
