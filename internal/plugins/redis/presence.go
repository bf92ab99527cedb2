package redis

import (
	"context"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// RedisLeaseStore holds presence as TTL-bearing keys: the key existing is the
// liveness claim, expiry is the implicit disconnect. Room leases carry no TTL;
// their lifecycle is explicit set/clear.
type RedisLeaseStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLeaseStore(rdb *redis.Client, ttl time.Duration) *RedisLeaseStore {
	return &RedisLeaseStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func presenceKey(userID string) string {
	return domain.PresenceKeyPrefix + userID
}

func roomPresenceKey(userID string) string {
	return domain.RoomPresenceKeyPrefix + userID
}

func (s *RedisLeaseStore) SetLease(ctx context.Context, userID string) error {
	return s.rdb.Set(ctx, presenceKey(userID), "online", s.ttl).Err()
}

// RefreshLease resets the TTL. If the lease already expired the EXPIRE is a
// no-op on a missing key; the expiry cascade owns that path, so the lease is
// not resurrected here.
func (s *RedisLeaseStore) RefreshLease(ctx context.Context, userID string) error {
	return s.rdb.Expire(ctx, presenceKey(userID), s.ttl).Err()
}

func (s *RedisLeaseStore) DeleteLease(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, presenceKey(userID)).Err()
}

func (s *RedisLeaseStore) SetRoomLease(ctx context.Context, userID, friendID string) error {
	return s.rdb.Set(ctx, roomPresenceKey(userID), friendID, 0).Err()
}

func (s *RedisLeaseStore) GetRoomLease(ctx context.Context, userID string) (string, error) {
	friendID, err := s.rdb.Get(ctx, roomPresenceKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return friendID, nil
}

func (s *RedisLeaseStore) DeleteRoomLease(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, roomPresenceKey(userID)).Err()
}
