package store

import (
	"flockr-server/models"

	"github.com/pkg/errors"
)

func (s *Store) CreateStandup(channelID, starterID int, timeFinish int64) error {
	_, err := s.db.Exec(`INSERT INTO standups (channel_id, starter_id, time_finish) VALUES (?, ?, ?)`,
		channelID, starterID, timeFinish)
	return errors.Wrap(err, "store.CreateStandup")
}

// GetStandup returns the channel's active standup, or ErrNotFound.
func (s *Store) GetStandup(channelID int) (*models.Standup, error) {
	return s.getStandup(s.db, channelID)
}

func (s *Store) getStandup(q querier, channelID int) (*models.Standup, error) {
	standup := &models.Standup{}
	err := q.QueryRow(`SELECT channel_id, starter_id, time_finish FROM standups WHERE channel_id = ?`, channelID).
		Scan(&standup.ChannelID, &standup.StarterID, &standup.TimeFinish)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := q.Query(`SELECT line FROM standup_lines WHERE channel_id = ? ORDER BY rowid`, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "store.getStandup")
	}
	defer rows.Close()

	standup.Lines = []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, errors.Wrap(err, "store.getStandup")
		}
		standup.Lines = append(standup.Lines, line)
	}
	return standup, rows.Err()
}

func (s *Store) AppendStandupLine(channelID int, line string) error {
	_, err := s.db.Exec(`INSERT INTO standup_lines (channel_id, line) VALUES (?, ?)`, channelID, line)
	return errors.Wrap(err, "store.AppendStandupLine")
}

// FinishStandup removes the channel's standup and returns it with its
// buffered lines.
func (s *Store) FinishStandup(channelID int) (*models.Standup, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "store.FinishStandup")
	}
	defer tx.Rollback()

	standup, err := s.getStandup(tx, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "store.FinishStandup")
	}
	if _, err := tx.Exec(`DELETE FROM standup_lines WHERE channel_id = ?`, channelID); err != nil {
		return nil, errors.Wrap(err, "store.FinishStandup")
	}
	if _, err := tx.Exec(`DELETE FROM standups WHERE channel_id = ?`, channelID); err != nil {
		return nil, errors.Wrap(err, "store.FinishStandup")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "store.FinishStandup")
	}
	return standup, nil
}
