package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type usersGetter interface {
	GetByUserID(ctx context.Context, userID int) (*User, error)
}

// UsernameCache caches username lookups by public user id in redis. Users
// are never mutated or deleted, so cached entries only expire via TTL.
type UsernameCache struct {
	repo usersGetter
	rdb  *redis.Client
	ttl  time.Duration
}

func NewUsernameCache(repo usersGetter, rdb *redis.Client, ttl time.Duration) *UsernameCache {
	return &UsernameCache{
		repo: repo,
		rdb:  rdb,
		ttl:  ttl,
	}
}

func (c *UsernameCache) GetByUserID(ctx context.Context, userID int) (*User, error) {
	key := usernameCacheKey(userID)

	username, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		return &User{
			UserID:   userID,
			Username: username,
		}, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Tracef("username cache get [%d]: %s", userID, err)
	}

	user, err := c.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Set(ctx, key, user.Username, c.ttl).Err(); err != nil {
		log.Tracef("username cache set [%d]: %s", userID, err)
	}

	return user, nil
}

func usernameCacheKey(userID int) string {
	return fmt.Sprintf("tracker::username::%d", userID)
}
