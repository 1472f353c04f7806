package board

import (
	"errors"
	"unicode/utf8"

	"flockr-server/apperr"
	"flockr-server/models"
	"flockr-server/store"
)

func checkMessageLength(text string) error {
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return apperr.Input("Message is too long")
	}
	return nil
}

// Send posts text to the channel and returns the new message id.
func (b *Board) Send(token string, channelID int, text string) (int, error) {
	var id int
	err := b.exec(func() error {
		if err := checkMessageLength(text); err != nil {
			return err
		}
		userID, err := b.userID(token)
		if err != nil {
			return err
		}
		if _, err := b.channel(channelID); err != nil {
			return err
		}
		if err := b.requireMember(channelID, userID); err != nil {
			return err
		}

		msg, err := b.post(channelID, userID, text)
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	return id, err
}

// post stores a new message at the front of the channel and announces it.
func (b *Board) post(channelID, userID int, text string) (*models.Message, error) {
	id, err := b.store.NextMessageID()
	if err != nil {
		return nil, internal(err)
	}
	msg := &models.Message{
		ID:          id,
		ChannelID:   channelID,
		UserID:      userID,
		Content:     text,
		TimeCreated: b.clock.Now().Unix(),
		Reacts:      []models.React{},
	}
	if err := b.store.InsertMessage(msg); err != nil {
		return nil, internal(err)
	}
	b.notify(channelID, models.EventNewMessage, messageEvent(msg))
	return msg, nil
}

func messageEvent(msg *models.Message) map[string]interface{} {
	return map[string]interface{}{
		"channel_id": msg.ChannelID,
		"message":    msg,
	}
}

// Messages returns one page of the channel's history, most recent first.
func (b *Board) Messages(token string, channelID, start int) (*models.MessagePage, error) {
	var page *models.MessagePage
	err := b.exec(func() error {
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

		total, err := b.store.CountChannelMessages(channelID)
		if err != nil {
			return internal(err)
		}
		last := total - 1
		if total == 0 {
			last = 0
		}
		if start < 0 || start > last {
			return apperr.Input("Start is greater than the total number of messages in this channel")
		}

		messages, err := b.store.GetChannelMessages(channelID, start, models.PageSize)
		if err != nil {
			return internal(err)
		}
		markReacted(messages, userID)

		end := start + models.PageSize
		if end >= total {
			end = -1
		}
		page = &models.MessagePage{Messages: messages, Start: start, End: end}
		return nil
	})
	return page, err
}

func markReacted(messages []models.Message, userID int) {
	for i := range messages {
		for j := range messages[i].Reacts {
			react := &messages[i].Reacts[j]
			react.IsThisUserReacted = false
			for _, id := range react.UserIDs {
				if id == userID {
					react.IsThisUserReacted = true
					break
				}
			}
		}
	}
}

func (b *Board) message(messageID int) (*models.Message, error) {
	msg, err := b.store.GetMessage(messageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Input("Message no longer exists")
	}
	if err != nil {
		return nil, internal(err)
	}
	return msg, nil
}

// requireAuthor allows the sender, global owners and the channel's
// owners to change a message.
func (b *Board) requireAuthor(msg *models.Message, user *models.User) error {
	if msg.UserID == user.ID || user.IsGlobalOwner() {
		return nil
	}
	owner, err := b.store.IsOwner(msg.ChannelID, user.ID)
	if err != nil {
		return internal(err)
	}
	if !owner {
		return apperr.Access("You do not have permissions to change this message")
	}
	return nil
}

func (b *Board) Remove(token string, messageID int) error {
	return b.exec(func() error {
		msg, err := b.message(messageID)
		if err != nil {
			return err
		}
		user, err := b.caller(token)
		if err != nil {
			return err
		}
		if err := b.requireAuthor(msg, user); err != nil {
			return err
		}

		if err := b.store.DeleteMessage(messageID); err != nil {
			return internal(err)
		}
		b.notify(msg.ChannelID, models.EventMessageRemoved, map[string]interface{}{
			"channel_id": msg.ChannelID,
			"message_id": messageID,
		})
		return nil
	})
}

// Edit replaces the message text. An empty text is stored as is; it does
// not remove the message.
func (b *Board) Edit(token string, messageID int, text string) error {
	return b.exec(func() error {
		msg, err := b.message(messageID)
		if err != nil {
			return err
		}
		user, err := b.caller(token)
		if err != nil {
			return err
		}
		if err := b.requireAuthor(msg, user); err != nil {
			return err
		}

		if err := b.store.UpdateMessageContent(messageID, text); err != nil {
			return internal(err)
		}
		msg.Content = text
		b.notify(msg.ChannelID, models.EventMessageUpdated, messageEvent(msg))
		return nil
	})
}

// reactable runs the checks shared by React and Unreact.
func (b *Board) reactable(token string, messageID, reactID int) (*models.Message, int, error) {
	userID, err := b.userID(token)
	if err != nil {
		return nil, 0, err
	}
	msg, err := b.message(messageID)
	if err != nil {
		return nil, 0, err
	}
	member, err := b.store.IsMember(msg.ChannelID, userID)
	if err != nil {
		return nil, 0, internal(err)
	}
	if !member {
		return nil, 0, apperr.Input("Message is not in a channel that the user is in")
	}
	if reactID != models.ReactThumbsUp {
		return nil, 0, apperr.Input("Invalid react id")
	}
	return msg, userID, nil
}

func (b *Board) React(token string, messageID, reactID int) error {
	return b.exec(func() error {
		msg, userID, err := b.reactable(token, messageID, reactID)
		if err != nil {
			return err
		}
		reacted, err := b.store.HasReacted(messageID, reactID, userID)
		if err != nil {
			return internal(err)
		}
		if reacted {
			return apperr.Input("Message already contains an active react from the user")
		}

		if err := b.store.AddReact(messageID, reactID, userID); err != nil {
			return internal(err)
		}
		b.notifyReacts(msg)
		return nil
	})
}

func (b *Board) Unreact(token string, messageID, reactID int) error {
	return b.exec(func() error {
		msg, userID, err := b.reactable(token, messageID, reactID)
		if err != nil {
			return err
		}
		reacted, err := b.store.HasReacted(messageID, reactID, userID)
		if err != nil {
			return internal(err)
		}
		if !reacted {
			return apperr.Input("Message does not contain an active react from the user")
		}

		if err := b.store.RemoveReact(messageID, reactID, userID); err != nil {
			return internal(err)
		}
		b.notifyReacts(msg)
		return nil
	})
}

func (b *Board) notifyReacts(msg *models.Message) {
	updated, err := b.store.GetMessage(msg.ID)
	if err != nil {
		return
	}
	b.notify(msg.ChannelID, models.EventReactionUpdate, map[string]interface{}{
		"channel_id": msg.ChannelID,
		"message_id": msg.ID,
		"reacts":     updated.Reacts,
	})
}

func (b *Board) Pin(token string, messageID int) error {
	return b.setPinned(token, messageID, true)
}

func (b *Board) Unpin(token string, messageID int) error {
	return b.setPinned(token, messageID, false)
}

func (b *Board) setPinned(token string, messageID int, pinned bool) error {
	return b.exec(func() error {
		user, err := b.caller(token)
		if err != nil {
			return err
		}
		msg, err := b.message(messageID)
		if err != nil {
			return err
		}
		channel, err := b.channel(msg.ChannelID)
		if err != nil {
			return err
		}
		if err := b.requireOwnerRights(channel, user); err != nil {
			return err
		}
		member, err := b.store.IsMember(msg.ChannelID, user.ID)
		if err != nil {
			return internal(err)
		}
		if !member {
			return apperr.Input("Message is not in a channel that the user is in")
		}
		if msg.IsPinned == pinned {
			if pinned {
				return apperr.Input("Message is already pinned")
			}
			return apperr.Input("Message is already unpinned")
		}

		if err := b.store.SetPinned(messageID, pinned); err != nil {
			return internal(err)
		}
		b.notify(msg.ChannelID, models.EventPinUpdate, map[string]interface{}{
			"channel_id": msg.ChannelID,
			"message_id": messageID,
			"is_pinned":  pinned,
		})
		return nil
	})
}
