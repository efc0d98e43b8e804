package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultKeyPrefix = "subseek:"
	redisOpTimeout   = 2 * time.Second
)

func init() {
	Register("redis", newRedisStore)
}

// redisStore keeps every entry in its own string key ({prefix}e:{key}) with a
// PX expiry, and tracks recency in one sorted set ({prefix}lru) scored by the
// last access in microseconds. Writes evict the lowest scores once the set
// grows past the size bound. Works on any Redis or Valkey with scripting.
type redisStore struct {
	client    *redis.Client
	ttl       time.Duration
	maxSize   int
	onEvict   EvictCallback
	logger    zerolog.Logger
	entryBase string
	lruKey    string
}

// KEYS[1] = entry key, KEYS[2] = lru set
// ARGV[1] = now (µs), ARGV[2] = member
var touchScript = redis.NewScript(`
local val = redis.call('GET', KEYS[1])
if val then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
else
    redis.call('ZREM', KEYS[2], ARGV[2])
end
return val
`)

// KEYS[1] = entry key, KEYS[2] = lru set
// ARGV[1] = value, ARGV[2] = now (µs), ARGV[3] = member, ARGV[4] = max size,
// ARGV[5] = ttl (ms, 0 = none), ARGV[6] = entry key prefix
// Returns the evicted members.
var storeScript = redis.NewScript(`
local ttl = tonumber(ARGV[5])
if ttl > 0 then
    redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
    redis.call('SET', KEYS[1], ARGV[1])
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])

local evicted = {}
local over = redis.call('ZCARD', KEYS[2]) - tonumber(ARGV[4])
if over > 0 then
    local oldest = redis.call('ZPOPMIN', KEYS[2], over)
    for i = 1, #oldest, 2 do
        if redis.call('DEL', ARGV[6] .. oldest[i]) == 1 then
            table.insert(evicted, oldest[i])
        end
    end
end
return evicted
`)

func newRedisStore(opts Options) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddress,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{
		client:    client,
		ttl:       opts.TTL,
		maxSize:   opts.Size,
		onEvict:   opts.OnEvict,
		logger:    opts.Logger,
		entryBase: prefix + "e:",
		lruKey:    prefix + "lru",
	}, nil
}

func (r *redisStore) keys(key string) []string {
	return []string{r.entryBase + key, r.lruKey}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	val, err := touchScript.Run(ctx, r.client, r.keys(key), now, key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error().Err(err).Str("key", key).Msg("Redis cache get failed")
		}
		return nil, false
	}
	return []byte(val), true
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	evicted, err := storeScript.Run(ctx, r.client, r.keys(key),
		value, now, key, r.maxSize, r.ttl.Milliseconds(), r.entryBase,
	).StringSlice()
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Redis cache set failed")
		return
	}

	if r.onEvict != nil {
		for _, k := range evicted {
			r.onEvict(k, nil)
		}
	}
}

// Len counts members touched within the TTL window; older members can only
// point at expired entries.
func (r *redisStore) Len(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	from := "-inf"
	if r.ttl > 0 {
		from = strconv.FormatInt(time.Now().Add(-r.ttl).UnixMicro(), 10)
	}
	n, err := r.client.ZCount(ctx, r.lruKey, from, "+inf").Result()
	if err != nil {
		r.logger.Error().Err(err).Msg("Redis cache len failed")
		return 0
	}
	return int(n)
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
