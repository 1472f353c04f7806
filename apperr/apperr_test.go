package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInput, KindOf(Input("bad channel")))
	assert.Equal(t, KindAccess, KindOf(Access("not a member")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("join: %w", Access("channel is not public"))
	assert.True(t, IsAccess(wrapped))
	assert.False(t, IsInput(wrapped))
	assert.False(t, IsInput(nil))
}

func TestInternalUnwrap(t *testing.T) {
	err := Internal("load channel", sql.ErrConnDone)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, "load channel: sql: connection is already closed", err.Error())
}

func TestSentinelComparison(t *testing.T) {
	errTooLong := Input("Message is too long")
	assert.ErrorIs(t, Input("Message is too long"), errTooLong)
	assert.NotErrorIs(t, Access("Message is too long"), errTooLong)
}
