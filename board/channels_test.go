package board

import (
	"testing"

	"flockr-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberIDs(members []models.Member) []int {
	ids := make([]int, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids
}

func TestCreatorIsMemberAndOwner(t *testing.T) {
	b, _ := newTestBoard(t)
	register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")

	for _, public := range []bool{true, false} {
		ch := createChannel(t, b, bob.Token, "room", public)
		details, err := b.ChannelDetails(bob.Token, ch)
		require.NoError(t, err)
		assert.Equal(t, "room", details.Name)
		assert.Equal(t, []int{bob.UserID}, memberIDs(details.AllMembers))
		assert.Equal(t, []int{bob.UserID}, memberIDs(details.OwnerMembers))
	}
}

func TestCreateChannelValidation(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")

	_, err := b.CreateChannel(a.Token, "", true)
	assertInput(t, err, "Channel name cannot be empty")
	_, err = b.CreateChannel(a.Token, "abcdefghijklmnopqrstu", true)
	assertInput(t, err, "Channel name is too long")
	_, err = b.CreateChannel("bogus", "general", true)
	assertAccess(t, err, "Invalid token entered")

	id, err := b.CreateChannel(a.Token, "abcdefghijklmnopqrst", true)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestListChannels(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	general := createChannel(t, b, a.Token, "general", true)
	secret := createChannel(t, b, bob.Token, "secret", false)

	mine, err := b.ListChannels(a.Token)
	require.NoError(t, err)
	assert.Equal(t, []models.ChannelSummary{{ID: general, Name: "general"}}, mine)

	all, err := b.ListAllChannels(a.Token)
	require.NoError(t, err)
	assert.Equal(t, []models.ChannelSummary{
		{ID: general, Name: "general"},
		{ID: secret, Name: "secret"},
	}, all)

	_, err = b.ListChannels("bogus")
	assertAccess(t, err, "Invalid token entered")
}

func TestPrivateChannelNeedsGlobalOwner(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	ch := createChannel(t, b, a.Token, "secret", false)

	assertAccess(t, b.Join(bob.Token, ch), "Channel is not public")

	require.NoError(t, b.PermissionChange(a.Token, bob.UserID, models.PermissionOwner))
	require.NoError(t, b.Join(bob.Token, ch))

	details, err := b.ChannelDetails(bob.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{a.UserID, bob.UserID}, memberIDs(details.AllMembers))
	// global owners become local owners when they join
	assert.Equal(t, []int{a.UserID, bob.UserID}, memberIDs(details.OwnerMembers))
}

func TestJoinErrors(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	assertInput(t, b.Join(a.Token, 99), "Invalid channel ID entered")
	assertAccess(t, b.Join("bogus", ch), "Invalid token entered")
	assertAccess(t, b.Join(a.Token, ch), "User is already a member of this channel")
}

func TestInvite(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	cy := register(t, b, "cy@example.com", "Cy", "Young")
	ch := createChannel(t, b, bob.Token, "secret", false)

	assertInput(t, b.Invite(bob.Token, 99, cy.UserID), "Invalid channel ID entered")
	assertInput(t, b.Invite(bob.Token, ch, 99), "Invalid user ID entered")
	assertAccess(t, b.Invite("bogus", ch, cy.UserID), "Invalid token entered")
	assertAccess(t, b.Invite(cy.Token, ch, a.UserID), "User is not a member of this channel")
	assertAccess(t, b.Invite(bob.Token, ch, bob.UserID), "User is already a member of this channel")

	require.NoError(t, b.Invite(bob.Token, ch, cy.UserID))
	require.NoError(t, b.Invite(bob.Token, ch, a.UserID))

	details, err := b.ChannelDetails(cy.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{bob.UserID, cy.UserID, a.UserID}, memberIDs(details.AllMembers))
	assert.Equal(t, []int{bob.UserID, a.UserID}, memberIDs(details.OwnerMembers))

	mine, err := b.ListChannels(cy.Token)
	require.NoError(t, err)
	assert.Equal(t, []models.ChannelSummary{{ID: ch, Name: "secret"}}, mine)
}

func TestLeaveDropsOwnershipForGood(t *testing.T) {
	b, _ := newTestBoard(t)
	register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	cy := register(t, b, "cy@example.com", "Cy", "Young")
	dee := register(t, b, "dee@example.com", "Dee", "Dee")
	ch := createChannel(t, b, bob.Token, "general", true)

	require.NoError(t, b.Join(cy.Token, ch))
	require.NoError(t, b.Join(dee.Token, ch))
	require.NoError(t, b.AddOwner(bob.Token, ch, cy.UserID))

	require.NoError(t, b.Leave(cy.Token, ch))
	_, err := b.ChannelDetails(cy.Token, ch)
	assertAccess(t, err, "User is not a member of this channel")
	mine, err := b.ListChannels(cy.Token)
	require.NoError(t, err)
	assert.Empty(t, mine)

	require.NoError(t, b.Join(cy.Token, ch))
	details, err := b.ChannelDetails(cy.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{bob.UserID}, memberIDs(details.OwnerMembers))
	assert.Equal(t, []int{bob.UserID, dee.UserID, cy.UserID}, memberIDs(details.AllMembers))
	assertAccess(t, b.AddOwner(cy.Token, ch, dee.UserID), "Given token is not an owner of the channel")
}

func TestLeaveKeepsEmptyChannel(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	assertInput(t, b.Leave(a.Token, 99), "Invalid channel ID entered")
	require.NoError(t, b.Leave(a.Token, ch))
	assertAccess(t, b.Leave(a.Token, ch), "User is not a member of this channel")

	all, err := b.ListAllChannels(a.Token)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddOwnerErrors(t *testing.T) {
	b, _ := newTestBoard(t)
	register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	cy := register(t, b, "cy@example.com", "Cy", "Young")
	dee := register(t, b, "dee@example.com", "Dee", "Dee")
	ch := createChannel(t, b, bob.Token, "general", true)
	require.NoError(t, b.Join(cy.Token, ch))

	assertInput(t, b.AddOwner(bob.Token, 99, cy.UserID), "Invalid channel ID entered")
	assertAccess(t, b.AddOwner("bogus", ch, cy.UserID), "Invalid token entered")
	assertAccess(t, b.AddOwner(cy.Token, ch, cy.UserID), "Given token is not an owner of the channel")
	assertInput(t, b.AddOwner(bob.Token, ch, bob.UserID), "User is already an owner of this channel")
	assertInput(t, b.AddOwner(bob.Token, ch, 99), "Invalid user ID entered")
	assertInput(t, b.AddOwner(bob.Token, ch, dee.UserID), "User is not a member of this channel")

	require.NoError(t, b.AddOwner(bob.Token, ch, cy.UserID))
	details, err := b.ChannelDetails(bob.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{bob.UserID, cy.UserID}, memberIDs(details.OwnerMembers))
}

func TestRemoveOwner(t *testing.T) {
	b, _ := newTestBoard(t)
	register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	cy := register(t, b, "cy@example.com", "Cy", "Young")
	ch := createChannel(t, b, bob.Token, "general", true)
	require.NoError(t, b.Join(cy.Token, ch))

	assertAccess(t, b.RemoveOwner(cy.Token, ch, bob.UserID), "Given token is not an owner of the channel")
	assertInput(t, b.RemoveOwner(bob.Token, ch, 99), "Invalid user ID entered")
	assertInput(t, b.RemoveOwner(bob.Token, ch, cy.UserID), "User is not an owner of this channel")

	require.NoError(t, b.AddOwner(bob.Token, ch, cy.UserID))
	require.NoError(t, b.RemoveOwner(cy.Token, ch, bob.UserID))

	details, err := b.ChannelDetails(cy.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{cy.UserID}, memberIDs(details.OwnerMembers))
	assert.Equal(t, []int{bob.UserID, cy.UserID}, memberIDs(details.AllMembers))
}

func TestCreatorRightsFollowCreatingSession(t *testing.T) {
	b, _ := newTestBoard(t)
	register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	cy := register(t, b, "cy@example.com", "Cy", "Young")
	ch := createChannel(t, b, bob.Token, "general", true)
	require.NoError(t, b.Join(cy.Token, ch))
	require.NoError(t, b.AddOwner(bob.Token, ch, cy.UserID))
	require.NoError(t, b.RemoveOwner(cy.Token, ch, bob.UserID))

	// off the owner list, but still holding the session that created the channel
	require.NoError(t, b.RemoveOwner(bob.Token, ch, cy.UserID))
	require.NoError(t, b.AddOwner(bob.Token, ch, cy.UserID))
	require.NoError(t, b.RemoveOwner(cy.Token, ch, cy.UserID))

	again, err := b.Login("bob@example.com", "password")
	require.NoError(t, err)
	assertAccess(t, b.AddOwner(again.Token, ch, cy.UserID), "Given token is not an owner of the channel")
}
