package board

import (
	"testing"

	"flockr-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")

	profile, err := b.UserProfile(a.Token, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.UserResponse{
		ID:        a.UserID,
		Email:     "ada@example.com",
		NameFirst: "Ada",
		NameLast:  "Lovelace",
		Handle:    "adalovelace",
	}, *profile)

	_, err = b.UserProfile("bogus", a.UserID)
	assertAccess(t, err, "Invalid token entered")
	_, err = b.UserProfile(a.Token, 99)
	assertInput(t, err, "Invalid u_id entered")
}

func TestSetNameShowsInChannelDetails(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	ch := createChannel(t, b, a.Token, "general", true)

	require.NoError(t, b.SetName(a.Token, "Augusta", "King"))

	details, err := b.ChannelDetails(a.Token, ch)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", details.AllMembers[0].NameFirst)
	assert.Equal(t, "King", details.OwnerMembers[0].NameLast)

	assertInput(t, b.SetName(a.Token, "", "King"), "Invalid first name")
	// length is checked before the token
	assertInput(t, b.SetName("bogus", "Ada", ""), "Invalid last name")
	assertAccess(t, b.SetName("bogus", "Ada", "King"), "Invalid token entered")
}

func TestSetEmail(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	register(t, b, "bob@example.com", "Bob", "Builder")

	assertInput(t, b.SetEmail(a.Token, "nope"), "Invalid email address entered")
	assertInput(t, b.SetEmail(a.Token, "bob@example.com"), "Email address is already being used by another user")
	assertAccess(t, b.SetEmail("bogus", "free@example.com"), "Invalid token entered")

	require.NoError(t, b.SetEmail(a.Token, "augusta@example.com"))
	_, err := b.Login("augusta@example.com", "password")
	assert.NoError(t, err)
}

func TestSetHandle(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	register(t, b, "bob@example.com", "Bob", "Builder")

	assertInput(t, b.SetHandle(a.Token, "ab"), "Handle cannot be less than 3 characters long")
	assertInput(t, b.SetHandle(a.Token, "abcdefghijklmnopqrstu"), "Handle cannot be more than 20 characters long")
	assertInput(t, b.SetHandle(a.Token, "bobbuilder"), "Handle is already being used by another user")
	assertAccess(t, b.SetHandle("bogus", "countess"), "Invalid token entered")

	require.NoError(t, b.SetHandle(a.Token, "countess"))
	profile, err := b.UserProfile(a.Token, a.UserID)
	require.NoError(t, err)
	assert.Equal(t, "countess", profile.Handle)
}

func TestUsersAll(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	register(t, b, "bob@example.com", "Bob", "Builder")

	users, err := b.UsersAll(a.Token)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "adalovelace", users[0].Handle)
	assert.Equal(t, "bobbuilder", users[1].Handle)

	_, err = b.UsersAll("bogus")
	assertInput(t, err, "Invalid token entered")
}

func TestPermissionChangeErrors(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")

	assertInput(t, b.PermissionChange(a.Token, 99, models.PermissionOwner), "Invalid user ID entered")
	assertAccess(t, b.PermissionChange("bogus", bob.UserID, models.PermissionOwner), "Invalid token entered")
	assertAccess(t, b.PermissionChange(bob.Token, a.UserID, models.PermissionMember), "Unauthorized user cannot change other's permissions")
	assertInput(t, b.PermissionChange(a.Token, a.UserID, models.PermissionOwner), "User is already an owner of flockr")
	assertInput(t, b.PermissionChange(a.Token, bob.UserID, models.PermissionMember), "User is already a member of flockr")
	assertInput(t, b.PermissionChange(a.Token, bob.UserID, 3), "Permission_id does not refer to a valid permission")

	require.NoError(t, b.PermissionChange(a.Token, bob.UserID, models.PermissionOwner))
	assertInput(t, b.PermissionChange(bob.Token, a.UserID, models.PermissionMember), "The first user of flockr cannot be demoted")
	assertInput(t, b.PermissionChange(a.Token, a.UserID, models.PermissionMember), "The first user of flockr cannot be demoted")
	assertInput(t, b.PermissionChange(bob.Token, a.UserID, models.PermissionOwner), "User is already an owner of flockr")

	require.NoError(t, b.PermissionChange(a.Token, bob.UserID, models.PermissionMember))
}

func TestSearchMatchesWholeText(t *testing.T) {
	b, _ := newTestBoard(t)
	a := register(t, b, "ada@example.com", "Ada", "Lovelace")
	bob := register(t, b, "bob@example.com", "Bob", "Builder")
	general := createChannel(t, b, a.Token, "general", true)
	private := createChannel(t, b, bob.Token, "secret", false)

	first := send(t, b, a.Token, general, "hello")
	send(t, b, a.Token, general, "hello world")
	send(t, b, bob.Token, private, "hello")
	require.NoError(t, b.React(a.Token, first, models.ReactThumbsUp))

	results, err := b.Search(a.Token, "hello")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, first, results[0].ID)
	assert.True(t, results[0].Reacts[0].IsThisUserReacted)

	_, err = b.Search("bogus", "hello")
	assertAccess(t, err, "Invalid token entered")
}
