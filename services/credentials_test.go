package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cppla/commentbox/utils"
)

func newTestCredentials(t *testing.T) (*CredentialStore, *fakeUsers) {
	t.Helper()
	users := newFakeUsers()
	store, err := NewCredentialStore(users, utils.NewPasswordHasher(bcrypt.MinCost), nil)
	require.NoError(t, err)
	return store, users
}

func TestCredentialStore_RegisterThenVerify(t *testing.T) {
	ctx := context.Background()
	store, users := newTestCredentials(t)

	user, err := store.Register(ctx, "a@x", "alice", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)

	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "pw1")

	got, err := store.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestCredentialStore_VerifyFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCredentials(t)
	_, err := store.Register(ctx, "a@x", "alice", "pw1")
	require.NoError(t, err)

	_, wrongPassword := store.Verify(ctx, "alice", "nope")
	_, unknownUser := store.Verify(ctx, "mallory", "pw1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.True(t, HasCode(wrongPassword, CodeInvalidCredentials))
	assert.True(t, HasCode(unknownUser, CodeInvalidCredentials))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, InvalidCredentialsMessage, wrongPassword.Error())
}

func TestCredentialStore_BlankEmailStoredAsNull(t *testing.T) {
	ctx := context.Background()
	store, users := newTestCredentials(t)

	user, err := store.Register(ctx, "  ", "alice", "pw1")
	require.NoError(t, err)
	stored, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Email)

	user, err = store.Register(ctx, " a@x ", "bob", "pw1")
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "a@x", *user.Email)
}

func TestCredentialStore_DuplicateUsernameIsStoreFailure(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCredentials(t)

	_, err := store.Register(ctx, "a@x", "alice", "pw1")
	require.NoError(t, err)
	_, err = store.Register(ctx, "b@x", "alice", "pw2")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeStoreFailure))

	got, err := store.Verify(ctx, "alice", "pw1")
	require.NoError(t, err, "first registration survives")
	assert.Equal(t, "alice", got.Username)
}

func TestCredentialStore_StoreFailures(t *testing.T) {
	ctx := context.Background()
	store, users := newTestCredentials(t)
	users.failAll = true

	_, err := store.Register(ctx, "a@x", "alice", "pw1")
	assert.True(t, HasCode(err, CodeStoreFailure))

	_, err = store.Verify(ctx, "alice", "pw1")
	assert.True(t, HasCode(err, CodeStoreFailure))
	assert.False(t, HasCode(err, CodeInvalidCredentials))

	_, err = store.FindByID(ctx, "x")
	assert.True(t, HasCode(err, CodeStoreFailure))
}

func TestCredentialStore_FindByID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestCredentials(t)
	user, err := store.Register(ctx, "a@x", "alice", "pw1")
	require.NoError(t, err)

	got, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = store.FindByID(ctx, "missing")
	assert.True(t, HasCode(err, CodeUserNotFound))
}
