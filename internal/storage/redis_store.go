package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"translingo/internal/models"
	"translingo/internal/redis"
)

const (
	redisSeqKey    = "translingo:translations:seq"
	redisRecentKey = "translingo:translations:recent"
	redisRecordKey = "translingo:translations:record:"
)

// RedisStore keeps each record as a JSON value and indexes recency in a
// sorted set scored by creation time.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// member ids are zero padded so equal scores order by id.
func redisMember(id int64) string {
	return fmt.Sprintf("%020d", id)
}

func (s *RedisStore) Create(ctx context.Context, in models.NewTranslation) (*models.Translation, error) {
	raw := s.client.Raw()
	if raw == nil {
		return nil, errors.New("redis client not initialized")
	}
	id, err := s.client.NextID(ctx, redisSeqKey)
	if err != nil {
		return nil, fmt.Errorf("next translation id: %w", err)
	}
	rec := newRecord(id, in, s.now().UTC())
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode translation: %w", err)
	}

	member := redisMember(id)
	_, err = raw.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, redisRecordKey+member, data, 0)
		pipe.ZAdd(ctx, redisRecentKey, goredis.Z{
			Score:  float64(rec.CreatedAt.UnixMicro()),
			Member: member,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store translation: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]*models.Translation, error) {
	raw := s.client.Raw()
	if raw == nil {
		return nil, errors.New("redis client not initialized")
	}
	limit = normalizeLimit(limit)
	members, err := raw.ZRevRange(ctx, redisRecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent translations: %w", err)
	}
	if len(members) == 0 {
		return []*models.Translation{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = redisRecordKey + m
	}
	values, err := raw.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	out := make([]*models.Translation, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// index entry without a record; skip it
			continue
		}
		var rec models.Translation
		if err := json.NewDecoder(strings.NewReader(str)).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode translation %s: %w", members[i], err)
		}
		out = append(out, &rec)
	}
	sortRecent(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
