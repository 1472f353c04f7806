package store

import (
	"flockr-server/models"

	"github.com/pkg/errors"
)

// CreateChannel stores a channel with its creator as first member and owner.
func (s *Store) CreateChannel(name string, isPublic bool, creatorToken string, creatorID int) (*models.Channel, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO channels (name, is_public, creator_token) VALUES (?, ?, ?)`,
		name, isPublic, creatorToken)
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}

	if _, err := tx.Exec(`INSERT INTO channel_members (channel_id, user_id) VALUES (?, ?)`, id, creatorID); err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}
	if _, err := tx.Exec(`INSERT INTO channel_owners (channel_id, user_id) VALUES (?, ?)`, id, creatorID); err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "store.CreateChannel")
	}

	return &models.Channel{
		ID:           int(id),
		Name:         name,
		IsPublic:     isPublic,
		CreatorToken: creatorToken,
	}, nil
}

func (s *Store) GetChannel(id int) (*models.Channel, error) {
	channel := &models.Channel{}
	err := s.db.QueryRow(`SELECT id, name, is_public, creator_token FROM channels WHERE id = ?`, id).
		Scan(&channel.ID, &channel.Name, &channel.IsPublic, &channel.CreatorToken)
	if err != nil {
		return nil, notFound(err)
	}
	return channel, nil
}

// GetAllChannels lists every channel, public or private, in creation order.
func (s *Store) GetAllChannels() ([]models.ChannelSummary, error) {
	return s.channelSummaries(`SELECT id, name FROM channels ORDER BY id`)
}

// GetChannelsForUser lists the channels the user belongs to, in the
// order they joined them.
func (s *Store) GetChannelsForUser(userID int) ([]models.ChannelSummary, error) {
	return s.channelSummaries(`
		SELECT c.id, c.name FROM channels c
		JOIN channel_members m ON m.channel_id = c.id
		WHERE m.user_id = ?
		ORDER BY m.rowid
	`, userID)
}

func (s *Store) channelSummaries(query string, args ...interface{}) ([]models.ChannelSummary, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "store.channelSummaries")
	}
	defer rows.Close()

	channels := []models.ChannelSummary{}
	for rows.Next() {
		var ch models.ChannelSummary
		if err := rows.Scan(&ch.ID, &ch.Name); err != nil {
			return nil, errors.Wrap(err, "store.channelSummaries")
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// IsMember reports whether the user is in the channel's member list or
// its owner list.
func (s *Store) IsMember(channelID, userID int) (bool, error) {
	return s.exists(`
		SELECT 1 FROM channel_members WHERE channel_id = ? AND user_id = ?
		UNION
		SELECT 1 FROM channel_owners WHERE channel_id = ? AND user_id = ?
	`, channelID, userID, channelID, userID)
}

// IsOwner reports whether the user is in the channel's owner list.
func (s *Store) IsOwner(channelID, userID int) (bool, error) {
	return s.exists(`SELECT 1 FROM channel_owners WHERE channel_id = ? AND user_id = ?`, channelID, userID)
}

// GetMembers returns the channel's member list in join order.
func (s *Store) GetMembers(channelID int) ([]models.Member, error) {
	return s.members("channel_members", channelID)
}

// GetOwners returns the channel's owner list in the order owners were added.
func (s *Store) GetOwners(channelID int) ([]models.Member, error) {
	return s.members("channel_owners", channelID)
}

func (s *Store) members(table string, channelID int) ([]models.Member, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.name_first, u.name_last, COALESCE(u.profile_img_url, '')
		FROM `+table+` m
		JOIN users u ON u.id = m.user_id
		WHERE m.channel_id = ?
		ORDER BY m.rowid
	`, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "store.members")
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.NameFirst, &m.NameLast, &m.ProfileImgURL); err != nil {
			return nil, errors.Wrap(err, "store.members")
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMemberIDs returns the ids of everyone who can read the channel.
func (s *Store) GetMemberIDs(channelID int) ([]int, error) {
	rows, err := s.db.Query(`
		SELECT user_id FROM channel_members WHERE channel_id = ?
		UNION
		SELECT user_id FROM channel_owners WHERE channel_id = ?
	`, channelID, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "store.GetMemberIDs")
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "store.GetMemberIDs")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMember appends the user to the member list, and to the owner list
// as well when asOwner is set.
func (s *Store) AddMember(channelID, userID int, asOwner bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.AddMember")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO channel_members (channel_id, user_id) VALUES (?, ?)`, channelID, userID); err != nil {
		return errors.Wrap(err, "store.AddMember")
	}
	if asOwner {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO channel_owners (channel_id, user_id) VALUES (?, ?)`, channelID, userID); err != nil {
			return errors.Wrap(err, "store.AddMember")
		}
	}
	return tx.Commit()
}

// RemoveMember takes the user off both the member and owner lists.
func (s *Store) RemoveMember(channelID, userID int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "store.RemoveMember")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM channel_members WHERE channel_id = ? AND user_id = ?`, channelID, userID); err != nil {
		return errors.Wrap(err, "store.RemoveMember")
	}
	if _, err := tx.Exec(`DELETE FROM channel_owners WHERE channel_id = ? AND user_id = ?`, channelID, userID); err != nil {
		return errors.Wrap(err, "store.RemoveMember")
	}
	return tx.Commit()
}

func (s *Store) AddOwner(channelID, userID int) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO channel_owners (channel_id, user_id) VALUES (?, ?)`, channelID, userID)
	return errors.Wrap(err, "store.AddOwner")
}

func (s *Store) RemoveOwner(channelID, userID int) error {
	_, err := s.db.Exec(`DELETE FROM channel_owners WHERE channel_id = ? AND user_id = ?`, channelID, userID)
	return errors.Wrap(err, "store.RemoveOwner")
}
