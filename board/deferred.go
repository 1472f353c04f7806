package board

import (
	"errors"
	"log"
	"strings"
	"time"

	"flockr-server/apperr"
	"flockr-server/models"
	"flockr-server/store"
)

// SendLater reserves a message id now and delivers the message to the
// channel at deliverAt (unix seconds). Until then it does not appear in
// the channel's history.
func (b *Board) SendLater(token string, channelID int, text string, deliverAt int64) (int, error) {
	var id int
	err := b.exec(func() error {
		userID, err := b.userID(token)
		if err != nil {
			return err
		}
		if err := checkMessageLength(text); err != nil {
			return err
		}
		if _, err := b.channel(channelID); err != nil {
			return err
		}
		now := b.clock.Now()
		at := time.Unix(deliverAt, 0)
		if !at.After(now) {
			return apperr.Input("Time sent is in the past")
		}
		if err := b.requireMember(channelID, userID); err != nil {
			return err
		}

		id, err = b.store.NextMessageID()
		if err != nil {
			return internal(err)
		}
		pending := &models.PendingMessage{
			ID:        id,
			ChannelID: channelID,
			UserID:    userID,
			Content:   text,
			DeliverAt: deliverAt,
		}
		if err := b.store.CreatePending(pending); err != nil {
			return internal(err)
		}

		messageID := id
		b.schedule(at.Sub(now), func() { b.deliver(messageID) })
		log.Printf("[BOARD] Message %d scheduled for channel %d at %d", id, channelID, deliverAt)
		return nil
	})
	return id, err
}

func (b *Board) deliver(messageID int) {
	msg, err := b.store.DeliverPending(messageID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[BOARD] Pending message %d is gone, skipping delivery", messageID)
		return
	}
	if err != nil {
		log.Printf("[BOARD] Failed to deliver message %d: %v", messageID, err)
		return
	}
	b.notify(msg.ChannelID, models.EventNewMessage, messageEvent(msg))
}

// StandupStart opens a standup for length seconds and returns when it
// finishes (unix seconds).
func (b *Board) StandupStart(token string, channelID, length int) (int64, error) {
	var finish int64
	err := b.exec(func() error {
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
		if length < 0 {
			return apperr.Input("Standup cannot be started with invalid length")
		}
		active, err := b.standupActive(channelID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.Input("A standup is running in this channel")
		}

		duration := time.Duration(length) * time.Second
		finish = b.clock.Now().Add(duration).Unix()
		if err := b.store.CreateStandup(channelID, userID, finish); err != nil {
			return internal(err)
		}

		b.schedule(duration, func() { b.finishStandup(channelID) })
		log.Printf("[STANDUP] User %d started a standup in channel %d until %d", userID, channelID, finish)
		b.notify(channelID, models.EventStandupStarted, map[string]interface{}{
			"channel_id":  channelID,
			"time_finish": finish,
		})
		return nil
	})
	return finish, err
}

// finishStandup posts the buffered lines as one message from the
// standup's starter and closes the standup.
func (b *Board) finishStandup(channelID int) {
	standup, err := b.store.FinishStandup(channelID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[STANDUP] Standup in channel %d is gone, nothing to flush", channelID)
		return
	}
	if err != nil {
		log.Printf("[STANDUP] Failed to close standup in channel %d: %v", channelID, err)
		return
	}

	msg, err := b.post(channelID, standup.StarterID, strings.Join(standup.Lines, "\n"))
	if err != nil {
		log.Printf("[STANDUP] Failed to post standup summary in channel %d: %v", channelID, err)
		return
	}
	log.Printf("[STANDUP] Standup in channel %d finished with %d line(s) as message %d", channelID, len(standup.Lines), msg.ID)
	b.notify(channelID, models.EventStandupFinished, map[string]interface{}{
		"channel_id": channelID,
		"message_id": msg.ID,
	})
}

// StandupSend buffers "<handle>: <text>" for the channel's active standup.
func (b *Board) StandupSend(token string, channelID int, text string) error {
	return b.exec(func() error {
		user, err := b.caller(token)
		if err != nil {
			return err
		}
		if _, err := b.channel(channelID); err != nil {
			return err
		}
		if err := b.requireMember(channelID, user.ID); err != nil {
			return err
		}
		if err := checkMessageLength(text); err != nil {
			return err
		}
		active, err := b.standupActive(channelID)
		if err != nil {
			return err
		}
		if active == nil {
			return apperr.Input("This channel is not running a standup now")
		}

		if err := b.store.AppendStandupLine(channelID, user.Handle+": "+text); err != nil {
			return internal(err)
		}
		return nil
	})
}

func (b *Board) StandupActive(token string, channelID int) (*models.StandupStatus, error) {
	status := &models.StandupStatus{}
	err := b.exec(func() error {
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
		active, err := b.standupActive(channelID)
		if err != nil {
			return err
		}
		if active != nil {
			finish := active.TimeFinish
			status.IsActive = true
			status.TimeFinish = &finish
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// standupActive returns the channel's open standup, or nil.
func (b *Board) standupActive(channelID int) (*models.Standup, error) {
	standup, err := b.store.GetStandup(channelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return standup, nil
}
