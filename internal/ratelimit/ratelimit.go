package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// takeScript refills the bucket for the elapsed time, then consumes one token
// if available. Returns {allowed, tokens_left}.
var takeScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local tokens_to_add = math.floor(((now - last_refill) / window) * refill_rate)
	if tokens_to_add > 0 then
		tokens = math.min(capacity, tokens + tokens_to_add)
		last_refill = now
	end

	local allowed = 0
	if tokens > 0 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
	redis.call('EXPIRE', key, window * 2)
	return {allowed, tokens}
`)

// peekScript reports the tokens available without consuming one.
var peekScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local tokens_to_add = math.floor(((now - last_refill) / window) * refill_rate)
	return math.min(capacity, tokens + math.max(tokens_to_add, 0))
`)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed   bool
	Remaining int64
	Limit     int64
}

// TokenBucket is a per-subject token bucket stored in Redis.
type TokenBucket struct {
	redis    *redis.Client
	capacity int64         // Maximum number of tokens
	refill   int64         // Tokens refilled per window
	window   time.Duration // Refill window
}

// NewTokenBucket creates a bucket refilling refillRate tokens per minute.
func NewTokenBucket(redisClient *redis.Client, capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		redis:    redisClient,
		capacity: capacity,
		refill:   refillRate,
		window:   time.Minute,
	}
}

// Capacity returns the bucket size.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

// Window returns the refill window.
func (tb *TokenBucket) Window() time.Duration {
	return tb.window
}

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", subject, action)
}

func (tb *TokenBucket) args() []interface{} {
	return []interface{}{tb.capacity, tb.refill, int64(tb.window.Seconds()), time.Now().Unix()}
}

// Take consumes one token for subject performing action.
func (tb *TokenBucket) Take(ctx context.Context, subject, action string) (Decision, error) {
	res, err := takeScript.Run(ctx, tb.redis, []string{key(subject, action)}, tb.args()...).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return Decision{}, fmt.Errorf("unexpected result from rate limit script: %v", res)
	}
	allowed, ok1 := vals[0].(int64)
	remaining, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return Decision{}, fmt.Errorf("unexpected result from rate limit script: %v", res)
	}

	return Decision{Allowed: allowed == 1, Remaining: remaining, Limit: tb.capacity}, nil
}

// Allow reports whether subject may perform action, consuming a token if so.
func (tb *TokenBucket) Allow(ctx context.Context, subject, action string) (bool, error) {
	d, err := tb.Take(ctx, subject, action)
	return d.Allowed, err
}

// GetRemaining returns the tokens available without consuming one.
func (tb *TokenBucket) GetRemaining(ctx context.Context, subject, action string) (int64, error) {
	res, err := peekScript.Run(ctx, tb.redis, []string{key(subject, action)}, tb.args()...).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}
	return res, nil
}

// Reset clears the bucket for subject and action.
func (tb *TokenBucket) Reset(ctx context.Context, subject, action string) error {
	return tb.redis.Del(ctx, key(subject, action)).Err()
}
