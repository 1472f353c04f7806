package board

import (
	"strings"
	"sync"
	"testing"
	"time"

	"flockr-server/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandupFlushesOneMessage(t *testing.T) {
	b, fake := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	finish, err := b.StandupStart(a.Token, ch, 2)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(2*time.Second).Unix(), finish)

	require.NoError(t, b.StandupSend(a.Token, ch, "Hi"))

	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	fake.Advance(2 * time.Second)

	page, err = b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "adalovelace: Hi", page.Messages[0].Content)
	assert.Equal(t, a.UserID, page.Messages[0].UserID)

	status, err := b.StandupActive(a.Token, ch)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Nil(t, status.TimeFinish)
}

func TestStandupJoinsLinesInOrder(t *testing.T) {
	b, fake := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	ch := createChannel(t, b, a.Token, "general", true)
	require.NoError(t, b.Join(bob.Token, ch))

	_, err := b.StandupStart(bob.Token, ch, 60)
	require.NoError(t, err)
	require.NoError(t, b.StandupSend(a.Token, ch, "did the thing"))
	require.NoError(t, b.StandupSend(bob.Token, ch, "reviewed it"))

	status, err := b.StandupActive(a.Token, ch)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	require.NotNil(t, status.TimeFinish)
	assert.Equal(t, epoch.Add(time.Minute).Unix(), *status.TimeFinish)

	fake.Advance(59 * time.Second)
	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	fake.Advance(time.Second)
	page, err = b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "adalovelace: did the thing\nbobbuilder: reviewed it", page.Messages[0].Content)
	assert.Equal(t, bob.UserID, page.Messages[0].UserID)
}

func TestStandupWithoutLinesStillPosts(t *testing.T) {
	b, fake := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	_, err := b.StandupStart(a.Token, ch, 0)
	require.NoError(t, err)
	fake.Advance(0)

	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "", page.Messages[0].Content)
}

func TestStandupErrors(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	ch := createChannel(t, b, a.Token, "general", true)

	_, err := b.StandupStart("bogus", ch, 5)
	assertAccess(t, err, "Invalid token entered")
	_, err = b.StandupStart(a.Token, 99, 5)
	assertInput(t, err, "Invalid channel ID entered")
	_, err = b.StandupStart(bob.Token, ch, 5)
	assertAccess(t, err, "User is not a member of this channel")
	_, err = b.StandupStart(a.Token, ch, -1)
	assertInput(t, err, "Standup cannot be started with invalid length")

	assertInput(t, b.StandupSend(a.Token, ch, "early"), "This channel is not running a standup now")

	_, err = b.StandupStart(a.Token, ch, 5)
	require.NoError(t, err)
	_, err = b.StandupStart(a.Token, ch, 5)
	assertInput(t, err, "A standup is running in this channel")

	assertAccess(t, b.StandupSend(bob.Token, ch, "hi"), "User is not a member of this channel")
	assertInput(t, b.StandupSend(a.Token, ch, strings.Repeat("a", 1001)), "Message is too long")
	assertInput(t, b.StandupSend(a.Token, 99, "hi"), "Invalid channel ID entered")

	_, err = b.StandupActive(bob.Token, ch)
	assertAccess(t, err, "User is not a member of this channel")
}

func TestSendLaterInvisibleUntilDue(t *testing.T) {
	b, fake := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	deliverAt := epoch.Add(10 * time.Second).Unix()
	id, err := b.SendLater(a.Token, ch, "from the past", deliverAt)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	// the reserved id is not reused
	now := send(t, b, a.Token, ch, "right now")
	assert.Equal(t, 2, now)

	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)

	fake.Advance(10 * time.Second)

	page, err = b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, id, page.Messages[0].ID)
	assert.Equal(t, "from the past", page.Messages[0].Content)
	assert.Equal(t, deliverAt, page.Messages[0].TimeCreated)
}

func TestSendLaterValidation(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	ch := createChannel(t, b, a.Token, "general", true)
	later := epoch.Add(time.Minute).Unix()

	_, err := b.SendLater("bogus", ch, "hi", later)
	assertAccess(t, err, "Invalid token entered")
	_, err = b.SendLater(a.Token, ch, strings.Repeat("a", 1001), later)
	assertInput(t, err, "Message is too long")
	_, err = b.SendLater(a.Token, 99, "hi", later)
	assertInput(t, err, "Invalid channel ID entered")
	_, err = b.SendLater(a.Token, ch, "hi", epoch.Unix())
	assertInput(t, err, "Time sent is in the past")
	_, err = b.SendLater(a.Token, ch, "hi", epoch.Add(-time.Hour).Unix())
	assertInput(t, err, "Time sent is in the past")
	_, err = b.SendLater(bob.Token, ch, "hi", later)
	assertAccess(t, err, "User is not a member of this channel")
}

func TestDeliveryAfterSenderLeaves(t *testing.T) {
	b, fake := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	ch := createChannel(t, b, a.Token, "general", true)
	require.NoError(t, b.Join(bob.Token, ch))

	_, err := b.SendLater(bob.Token, ch, "bye", epoch.Add(time.Second).Unix())
	require.NoError(t, err)
	require.NoError(t, b.Leave(bob.Token, ch))

	fake.Advance(time.Second)
	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, bob.UserID, page.Messages[0].UserID)
}

// lateClock holds every callback instead of running it, so a test can
// fire one after the board has already stopped its timer.
type lateClock struct {
	*clock.FakeClock
	mu   sync.Mutex
	held []func()
}

func (c *lateClock) AfterFunc(d time.Duration, f func()) *clock.Timer {
	c.mu.Lock()
	c.held = append(c.held, f)
	c.mu.Unlock()
	return c.FakeClock.AfterFunc(d, func() {})
}

func (c *lateClock) fire(i int) {
	c.mu.Lock()
	f := c.held[i]
	c.mu.Unlock()
	f()
}

func TestTimerFiredBeforeResetIsDropped(t *testing.T) {
	late := &lateClock{FakeClock: clock.Fake(epoch)}
	b, _ := newTestBoard(t, func(o *Options) { o.Clock = late })

	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)
	_, err := b.SendLater(a.Token, ch, "old", epoch.Unix()+10)
	require.NoError(t, err)

	require.NoError(t, b.Reset())

	// ids restart, so the new message reuses the old one's id
	a = register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch = createChannel(t, b, a.Token, "general", true)
	id, err := b.SendLater(a.Token, ch, "new", epoch.Unix()+60)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	late.fire(0)

	page, err := b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	late.fire(1)

	page, err = b.Messages(a.Token, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "new", page.Messages[0].Content)
}
