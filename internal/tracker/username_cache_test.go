package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelJHerbert/exercise-tracker/internal/tracker"
)

func TestUsernameCache_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	usersRepoMock := NewMockuserSource(ctrl)
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("tracker::username::42").SetVal("alice")

	cache := tracker.NewUsernameCache(usersRepoMock, rdb, time.Hour)

	user, err := cache.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, user.UserID)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUsernameCache_MissFillsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	usersRepoMock := NewMockuserSource(ctrl)
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("tracker::username::42").RedisNil()
	redisMock.ExpectSet("tracker::username::42", "alice", time.Hour).SetVal("OK")

	usersRepoMock.EXPECT().
		GetByUserID(gomock.Any(), 42).
		Return(&tracker.User{ID: 1, UserID: 42, Username: "alice"}, nil)

	cache := tracker.NewUsernameCache(usersRepoMock, rdb, time.Hour)

	user, err := cache.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUsernameCache_MissUnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	usersRepoMock := NewMockuserSource(ctrl)
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet("tracker::username::42").RedisNil()

	usersRepoMock.EXPECT().
		GetByUserID(gomock.Any(), 42).
		Return(nil, tracker.ErrUserNotFound)

	cache := tracker.NewUsernameCache(usersRepoMock, rdb, time.Hour)

	user, err := cache.GetByUserID(context.Background(), 42)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, tracker.ErrUserNotFound)

	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUsernameCache_RedisDownFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	usersRepoMock := NewMockuserSource(ctrl)
	rdb, redisMock := redismock.NewClientMock()

	// a broken cache degrades to a plain repo lookup
	redisMock.ExpectGet("tracker::username::42").SetErr(errors.New("connection refused"))
	redisMock.ExpectSet("tracker::username::42", "alice", time.Hour).SetErr(errors.New("connection refused"))

	usersRepoMock.EXPECT().
		GetByUserID(gomock.Any(), 42).
		Return(&tracker.User{ID: 1, UserID: 42, Username: "alice"}, nil)

	cache := tracker.NewUsernameCache(usersRepoMock, rdb, time.Hour)

	user, err := cache.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}
