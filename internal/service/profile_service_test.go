package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage-manager/internal/model"
)

func strPtr(v string) *string { return &v }

func TestRegisterAndUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.profiles.RegisterUser(ctx, &model.User{Username: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	user := &model.User{Username: "alice", IsActive: true}
	profile, err := env.profiles.RegisterUser(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, profile.UserID)

	exists, err := env.userRep.Exists(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	updated, err := env.profiles.UpdateProfile(ctx, user.ID, model.ProfileUpdate{
		Bio:      strPtr(" hello "),
		Location: strPtr("Moscow"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "Moscow", updated.Location)
	assert.Empty(t, updated.Phone)

	_, err = env.profiles.UpdateProfile(ctx, user.ID, model.ProfileUpdate{Phone: strPtr(strings.Repeat("1", 21))})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	got, err := env.profiles.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)

	_, err = env.profiles.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateAvatarReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &model.User{Username: "bob", IsActive: true}
	_, err := env.profiles.RegisterUser(ctx, user)
	require.NoError(t, err)

	_, err = env.profiles.UpdateAvatar(ctx, user.ID, "cv.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	first, err := env.profiles.UpdateAvatar(ctx, user.ID, "me.png", strings.NewReader("one"))
	require.NoError(t, err)
	firstRef := first.AvatarRef
	assert.True(t, strings.HasPrefix(firstRef, "avatars/user_"+user.ID+"/"))

	second, err := env.profiles.UpdateAvatar(ctx, user.ID, `C:\photos\me.jpg`, strings.NewReader("two"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second.AvatarRef, "_me.jpg"))

	exists, err := env.store.Exists(ctx, firstRef)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = env.store.Exists(ctx, second.AvatarRef)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEnsureUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.profiles.EnsureUser(ctx, "u1", ""))
	require.NoError(t, env.profiles.EnsureUser(ctx, "u1", "ignored"))

	n, err := env.userRep.CountActive(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	profile, err := env.profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, "u1", env.db.users["u1"].Username)
}
