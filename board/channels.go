package board

import (
	"errors"
	"log"
	"unicode/utf8"

	"flockr-server/apperr"
	"flockr-server/models"
	"flockr-server/store"
)

const maxChannelNameLength = 20

func (b *Board) CreateChannel(token, name string, isPublic bool) (int, error) {
	var id int
	err := b.exec(func() error {
		if name == "" {
			return apperr.Input("Channel name cannot be empty")
		}
		if utf8.RuneCountInString(name) > maxChannelNameLength {
			return apperr.Input("Channel name is too long")
		}
		userID, err := b.userID(token)
		if err != nil {
			return err
		}

		channel, err := b.store.CreateChannel(name, isPublic, token, userID)
		if err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] User %d created channel %d (%s)", userID, channel.ID, name)
		id = channel.ID
		return nil
	})
	return id, err
}

// ListChannels returns the caller's channels in join order.
func (b *Board) ListChannels(token string) ([]models.ChannelSummary, error) {
	var channels []models.ChannelSummary
	err := b.exec(func() error {
		id, err := b.userID(token)
		if err != nil {
			return err
		}
		channels, err = b.store.GetChannelsForUser(id)
		if err != nil {
			return internal(err)
		}
		return nil
	})
	return channels, err
}

// ListAllChannels returns every channel, private ones included.
func (b *Board) ListAllChannels(token string) ([]models.ChannelSummary, error) {
	var channels []models.ChannelSummary
	err := b.exec(func() error {
		if _, err := b.userID(token); err != nil {
			return err
		}
		var err error
		channels, err = b.store.GetAllChannels()
		if err != nil {
			return internal(err)
		}
		return nil
	})
	return channels, err
}

func (b *Board) ChannelDetails(token string, channelID int) (*models.ChannelDetails, error) {
	var details *models.ChannelDetails
	err := b.exec(func() error {
		channel, err := b.channel(channelID)
		if err != nil {
			return err
		}
		userID, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.requireMember(channelID, userID); err != nil {
			return err
		}

		owners, err := b.store.GetOwners(channelID)
		if err != nil {
			return internal(err)
		}
		members, err := b.store.GetMembers(channelID)
		if err != nil {
			return internal(err)
		}
		details = &models.ChannelDetails{Name: channel.Name, OwnerMembers: owners, AllMembers: members}
		return nil
	})
	return details, err
}

func (b *Board) Join(token string, channelID int) error {
	return b.exec(func() error {
		channel, err := b.channel(channelID)
		if err != nil {
			return err
		}
		user, err := b.caller(token)
		if err != nil {
			return err
		}
		member, err := b.store.IsMember(channelID, user.ID)
		if err != nil {
			return internal(err)
		}
		if member {
			return apperr.Access("User is already a member of this channel")
		}
		if !channel.IsPublic && !user.IsGlobalOwner() {
			return apperr.Access("Channel is not public")
		}

		if err := b.store.AddMember(channelID, user.ID, user.IsGlobalOwner()); err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] User %d joined channel %d", user.ID, channelID)
		return nil
	})
}

func (b *Board) Invite(token string, channelID, userID int) error {
	return b.exec(func() error {
		if _, err := b.channel(channelID); err != nil {
			return err
		}
		invitee, err := b.store.GetUserByID(userID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Input("Invalid user ID entered")
		}
		if err != nil {
			return internal(err)
		}
		inviterID, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.requireMember(channelID, inviterID); err != nil {
			return err
		}
		member, err := b.store.IsMember(channelID, userID)
		if err != nil {
			return internal(err)
		}
		if member {
			return apperr.Access("User is already a member of this channel")
		}

		if err := b.store.AddMember(channelID, userID, invitee.IsGlobalOwner()); err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] User %d invited user %d to channel %d", inviterID, userID, channelID)
		return nil
	})
}

// Leave removes the caller from the channel's members and owners. The
// channel itself stays, even when nobody is left in it.
func (b *Board) Leave(token string, channelID int) error {
	return b.exec(func() error {
		if _, err := b.channel(channelID); err != nil {
			return err
		}
		userID, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := b.requireMember(channelID, userID); err != nil {
			return err
		}

		if err := b.store.RemoveMember(channelID, userID); err != nil {
			return internal(err)
		}
		log.Printf("[BOARD] User %d left channel %d", userID, channelID)
		return nil
	})
}

func (b *Board) AddOwner(token string, channelID, userID int) error {
	return b.exec(func() error {
		channel, err := b.channel(channelID)
		if err != nil {
			return err
		}
		caller, err := b.caller(token)
		if err != nil {
			return err
		}
		if err := b.requireOwnerRights(channel, caller); err != nil {
			return err
		}
		owner, err := b.store.IsOwner(channelID, userID)
		if err != nil {
			return internal(err)
		}
		if owner {
			return apperr.Input("User is already an owner of this channel")
		}
		if _, err := b.store.GetUserByID(userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Input("Invalid user ID entered")
			}
			return internal(err)
		}
		member, err := b.store.IsMember(channelID, userID)
		if err != nil {
			return internal(err)
		}
		if !member {
			return apperr.Input("User is not a member of this channel")
		}

		if err := b.store.AddOwner(channelID, userID); err != nil {
			return internal(err)
		}
		return nil
	})
}

func (b *Board) RemoveOwner(token string, channelID, userID int) error {
	return b.exec(func() error {
		channel, err := b.channel(channelID)
		if err != nil {
			return err
		}
		caller, err := b.caller(token)
		if err != nil {
			return err
		}
		if err := b.requireOwnerRights(channel, caller); err != nil {
			return err
		}
		if _, err := b.store.GetUserByID(userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Input("Invalid user ID entered")
			}
			return internal(err)
		}
		owner, err := b.store.IsOwner(channelID, userID)
		if err != nil {
			return internal(err)
		}
		if !owner {
			return apperr.Input("User is not an owner of this channel")
		}

		if err := b.store.RemoveOwner(channelID, userID); err != nil {
			return internal(err)
		}
		return nil
	})
}

func (b *Board) channel(channelID int) (*models.Channel, error) {
	channel, err := b.store.GetChannel(channelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Input("Invalid channel ID entered")
	}
	if err != nil {
		return nil, internal(err)
	}
	return channel, nil
}

func (b *Board) requireMember(channelID, userID int) error {
	member, err := b.store.IsMember(channelID, userID)
	if err != nil {
		return internal(err)
	}
	if !member {
		return apperr.Access("User is not a member of this channel")
	}
	return nil
}

// hasOwnerRights holds for global owners, for the channel's creator while
// they still hold the session they created it with, and for anyone in the
// channel's owner list.
func (b *Board) hasOwnerRights(channel *models.Channel, user *models.User) (bool, error) {
	if user.IsGlobalOwner() {
		return true, nil
	}
	token, err := b.store.GetUserToken(user.ID)
	if err != nil {
		return false, err
	}
	if token != "" && token == channel.CreatorToken {
		return true, nil
	}
	return b.store.IsOwner(channel.ID, user.ID)
}

func (b *Board) requireOwnerRights(channel *models.Channel, user *models.User) error {
	ok, err := b.hasOwnerRights(channel, user)
	if err != nil {
		return internal(err)
	}
	if !ok {
		return apperr.Access("Given token is not an owner of the channel")
	}
	return nil
}
