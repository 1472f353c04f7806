package board

import (
	"errors"
	"log"
	"unicode/utf8"

	"flockr-server/apperr"
	"flockr-server/models"
	"flockr-server/store"
)

const minHandleLength = 3

func (b *Board) UserProfile(token string, userID int) (*models.UserResponse, error) {
	var resp models.UserResponse
	err := b.exec(func() error {
		if _, err := b.userID(token); err != nil {
			return err
		}
		user, err := b.store.GetUserByID(userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("Invalid u_id entered")
		}
		if err != nil {
			return internal(err)
		}
		resp = user.ToResponse()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *Board) SetName(token, nameFirst, nameLast string) error {
	return b.exec(func() error {
		if err := checkNames(nameFirst, nameLast); err != nil {
			return err
		}
		id, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.store.UpdateUserName(id, nameFirst, nameLast); err != nil {
			return internal(err)
		}
		return nil
	})
}

func (b *Board) SetEmail(token, email string) error {
	return b.exec(func() error {
		if !b.validEmail(email) {
			return apperr.Input("Invalid email address entered")
		}
		taken, err := b.store.EmailExists(email)
		if err != nil {
			return internal(err)
		}
		if taken {
			return apperr.Input("Email address is already being used by another user")
		}
		id, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.store.UpdateUserEmail(id, email); err != nil {
			return internal(err)
		}
		return nil
	})
}

func (b *Board) SetHandle(token, handle string) error {
	return b.exec(func() error {
		n := utf8.RuneCountInString(handle)
		if n > maxHandleLength {
			return apperr.Input("Handle cannot be more than 20 characters long")
		}
		if n < minHandleLength {
			return apperr.Input("Handle cannot be less than 3 characters long")
		}
		taken, err := b.store.HandleExists(handle)
		if err != nil {
			return internal(err)
		}
		if taken {
			return apperr.Input("Handle is already being used by another user")
		}
		id, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.store.UpdateUserHandle(id, handle); err != nil {
			return internal(err)
		}
		return nil
	})
}

// UsersAll lists every registered user. A bad token here is an input
// error, unlike the other operations.
func (b *Board) UsersAll(token string) ([]models.UserResponse, error) {
	var users []models.UserResponse
	err := b.exec(func() error {
		if _, err := b.userID(token); err != nil {
			if apperr.IsAccess(err) {
				return apperr.Input("Invalid token entered")
			}
			return err
		}
		all, err := b.store.GetAllUsers()
		if err != nil {
			return internal(err)
		}
		users = make([]models.UserResponse, 0, len(all))
		for i := range all {
			users = append(users, all[i].ToResponse())
		}
		return nil
	})
	return users, err
}

// bootstrapOwnerID is the first registered user, who stays a global owner
// for good. Ids restart at 1 after a reset.
const bootstrapOwnerID = 1

// PermissionChange sets a user's global permission. Only global owners
// may call it.
func (b *Board) PermissionChange(token string, userID, permission int) error {
	return b.exec(func() error {
		target, err := b.store.GetUserByID(userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("Invalid user ID entered")
		}
		if err != nil {
			return internal(err)
		}
		caller, err := b.caller(token)
		if err != nil {
			return err
		}
		if !caller.IsGlobalOwner() {
			return apperr.Access("Unauthorized user cannot change other's permissions")
		}
		if target.ID == bootstrapOwnerID && permission == models.PermissionMember {
			return apperr.Input("The first user of flockr cannot be demoted")
		}
		if target.PermissionID == permission {
			if permission == models.PermissionOwner {
				return apperr.Input("User is already an owner of flockr")
			}
			return apperr.Input("User is already a member of flockr")
		}
		if permission != models.PermissionOwner && permission != models.PermissionMember {
			return apperr.Input("Permission_id does not refer to a valid permission")
		}

		if err := b.store.UpdateUserPermission(userID, permission); err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] User %d set permission of user %d to %d", caller.ID, userID, permission)
		return nil
	})
}

// Search returns messages in the caller's channels whose text is exactly
// query.
func (b *Board) Search(token, query string) ([]models.Message, error) {
	var messages []models.Message
	err := b.exec(func() error {
		id, err := b.userID(token)
		if err != nil {
			return err
		}
		messages, err = b.store.SearchMessages(id, query)
		if err != nil {
			return internal(err)
		}
		markReacted(messages, id)
		return nil
	})
	return messages, err
}
