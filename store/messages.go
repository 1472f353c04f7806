package store

import (
	"flockr-server/models"

	"github.com/pkg/errors"
)

const messageColumns = `id, channel_id, user_id, content, time_created, is_pinned`

func scanMessage(row interface{ Scan(...interface{}) error }) (*models.Message, error) {
	msg := &models.Message{}
	err := row.Scan(&msg.ID, &msg.ChannelID, &msg.UserID, &msg.Content, &msg.TimeCreated, &msg.IsPinned)
	if err != nil {
		return nil, notFound(err)
	}
	msg.Reacts = []models.React{}
	return msg, nil
}

// InsertMessage places msg at the front of its channel's history. The
// id must already have been reserved with NextMessageID.
func (s *Store) InsertMessage(msg *models.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.InsertMessage")
	}
	defer tx.Rollback()

	if err := s.insertMessage(tx, msg); err != nil {
		return errors.Wrap(err, "store.InsertMessage")
	}
	return tx.Commit()
}

func (s *Store) insertMessage(q querier, msg *models.Message) error {
	position, err := s.next(q, counterMessagePosition)
	if err != nil {
		return errors.Wrap(err, "store.insertMessage")
	}
	_, err = q.Exec(`
		INSERT INTO messages (id, channel_id, user_id, content, time_created, is_pinned, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ChannelID, msg.UserID, msg.Content, msg.TimeCreated, msg.IsPinned, position)
	return errors.Wrap(err, "store.insertMessage")
}

func (s *Store) GetMessage(id int) (*models.Message, error) {
	msg, err := scanMessage(s.db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id))
	if err != nil {
		return nil, errors.Wrap(err, "store.GetMessage")
	}
	messages := []models.Message{*msg}
	if err := s.loadReacts(messages); err != nil {
		return nil, errors.Wrap(err, "store.GetMessage")
	}
	return &messages[0], nil
}

func (s *Store) CountChannelMessages(channelID int) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE channel_id = ?`, channelID).Scan(&count)
	return count, err
}

// GetChannelMessages returns up to limit messages, most recent first,
// skipping the first offset.
func (s *Store) GetChannelMessages(channelID, offset, limit int) ([]models.Message, error) {
	return s.queryMessages(`
		SELECT `+messageColumns+` FROM messages
		WHERE channel_id = ?
		ORDER BY position DESC
		LIMIT ? OFFSET ?
	`, channelID, limit, offset)
}

// SearchMessages returns messages whose text is exactly query, from
// every channel the user is a member of. Channels come in join order,
// messages most recent first within each.
func (s *Store) SearchMessages(userID int, query string) ([]models.Message, error) {
	return s.queryMessages(`
		SELECT m.id, m.channel_id, m.user_id, m.content, m.time_created, m.is_pinned
		FROM messages m
		JOIN channel_members cm ON cm.channel_id = m.channel_id
		WHERE cm.user_id = ? AND m.content = ?
		ORDER BY cm.rowid, m.position DESC
	`, userID, query)
}

func (s *Store) queryMessages(query string, args ...interface{}) ([]models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "store.queryMessages")
	}

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "store.queryMessages")
		}
		messages = append(messages, *msg)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "store.queryMessages")
	}

	// rows must be closed before the next query on the single connection
	if err := s.loadReacts(messages); err != nil {
		return nil, errors.Wrap(err, "store.queryMessages")
	}
	return messages, nil
}

// loadReacts fills in Reacts for each message. A react kind that has
// been used once stays listed even after every user has unreacted.
func (s *Store) loadReacts(messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]interface{}, len(messages))
	index := make(map[int]int, len(messages))
	for i, msg := range messages {
		ids[i] = msg.ID
		index[msg.ID] = i
	}
	in := placeholders(len(ids))

	rows, err := s.db.Query(`SELECT message_id, react_id FROM reacts WHERE message_id IN (`+in+`) ORDER BY message_id, react_id`, ids...)
	if err != nil {
		return errors.Wrap(err, "store.loadReacts")
	}
	for rows.Next() {
		var messageID, reactID int
		if err := rows.Scan(&messageID, &reactID); err != nil {
			rows.Close()
			return errors.Wrap(err, "store.loadReacts")
		}
		i := index[messageID]
		messages[i].Reacts = append(messages[i].Reacts, models.React{ReactID: reactID, UserIDs: []int{}})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return errors.Wrap(err, "store.loadReacts")
	}

	rows, err = s.db.Query(`SELECT message_id, react_id, user_id FROM react_users WHERE message_id IN (`+in+`) ORDER BY rowid`, ids...)
	if err != nil {
		return errors.Wrap(err, "store.loadReacts")
	}
	defer rows.Close()
	for rows.Next() {
		var messageID, reactID, userID int
		if err := rows.Scan(&messageID, &reactID, &userID); err != nil {
			return errors.Wrap(err, "store.loadReacts")
		}
		reacts := messages[index[messageID]].Reacts
		for j := range reacts {
			if reacts[j].ReactID == reactID {
				reacts[j].UserIDs = append(reacts[j].UserIDs, userID)
			}
		}
	}
	return rows.Err()
}

// DeleteMessage removes the message and its reacts.
func (s *Store) DeleteMessage(id int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.DeleteMessage")
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM react_users WHERE message_id = ?`,
		`DELETE FROM reacts WHERE message_id = ?`,
		`DELETE FROM messages WHERE id = ?`,
	} {
		if _, err := tx.Exec(query, id); err != nil {
			return errors.Wrap(err, "store.DeleteMessage")
		}
	}
	return tx.Commit()
}

func (s *Store) UpdateMessageContent(id int, content string) error {
	_, err := s.db.Exec(`UPDATE messages SET content = ? WHERE id = ?`, content, id)
	return errors.Wrap(err, "store.UpdateMessageContent")
}

func (s *Store) SetPinned(id int, pinned bool) error {
	_, err := s.db.Exec(`UPDATE messages SET is_pinned = ? WHERE id = ?`, pinned, id)
	return errors.Wrap(err, "store.SetPinned")
}

func (s *Store) HasReacted(messageID, reactID, userID int) (bool, error) {
	return s.exists(`SELECT 1 FROM react_users WHERE message_id = ? AND react_id = ? AND user_id = ?`,
		messageID, reactID, userID)
}

func (s *Store) AddReact(messageID, reactID, userID int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.AddReact")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO reacts (message_id, react_id) VALUES (?, ?)`, messageID, reactID); err != nil {
		return errors.Wrap(err, "store.AddReact")
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO react_users (message_id, react_id, user_id) VALUES (?, ?, ?)`,
		messageID, reactID, userID); err != nil {
		return errors.Wrap(err, "store.AddReact")
	}
	return tx.Commit()
}

// RemoveReact drops the user from the react. The react entry itself stays.
func (s *Store) RemoveReact(messageID, reactID, userID int) error {
	_, err := s.db.Exec(`DELETE FROM react_users WHERE message_id = ? AND react_id = ? AND user_id = ?`,
		messageID, reactID, userID)
	return errors.Wrap(err, "store.RemoveReact")
}

func (s *Store) CreatePending(p *models.PendingMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO pending_messages (id, channel_id, user_id, content, deliver_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.ChannelID, p.UserID, p.Content, p.DeliverAt)
	return errors.Wrap(err, "store.CreatePending")
}

// GetPending returns a send-later message that has not been delivered.
func (s *Store) GetPending(id int) (*models.PendingMessage, error) {
	p := &models.PendingMessage{}
	err := s.db.QueryRow(`SELECT id, channel_id, user_id, content, deliver_at FROM pending_messages WHERE id = ?`, id).
		Scan(&p.ID, &p.ChannelID, &p.UserID, &p.Content, &p.DeliverAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// DeliverPending moves a pending message into its channel, stamped with
// its delivery time. It returns ErrNotFound if the message is no longer
// pending.
func (s *Store) DeliverPending(id int) (*models.Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "store.DeliverPending")
	}
	defer tx.Rollback()

	var p models.PendingMessage
	err = tx.QueryRow(`SELECT id, channel_id, user_id, content, deliver_at FROM pending_messages WHERE id = ?`, id).
		Scan(&p.ID, &p.ChannelID, &p.UserID, &p.Content, &p.DeliverAt)
	if err != nil {
		return nil, notFound(err)
	}

	msg := &models.Message{
		ID:          p.ID,
		ChannelID:   p.ChannelID,
		UserID:      p.UserID,
		Content:     p.Content,
		TimeCreated: p.DeliverAt,
		Reacts:      []models.React{},
	}
	if err := s.insertMessage(tx, msg); err != nil {
		return nil, errors.Wrap(err, "store.DeliverPending")
	}
	if _, err := tx.Exec(`DELETE FROM pending_messages WHERE id = ?`, id); err != nil {
		return nil, errors.Wrap(err, "store.DeliverPending")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "store.DeliverPending")
	}
	return msg, nil
}
