package hosttimer

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
	"github.com/vnykmshr/timeflow/pkg/common/validation"
	"github.com/vnykmshr/timeflow/pkg/logx"
)

// RedisClockConfig holds configuration for a RedisClock.
type RedisClockConfig struct {
	// Client is the Redis connection used for the TIME command. Required.
	Client redis.UniversalClient

	// Timeout bounds each TIME round trip (default: 50ms).
	Timeout time.Duration

	// Fallback is used when Redis cannot answer (default: SystemClock).
	Fallback Clock

	// Logger receives a warning for every fallback.
	Logger logx.Logger
}

// RedisClock reads the Redis server clock, so every process resolving
// time-of-day descriptors against the same server agrees on "now".
type RedisClock struct {
	client   redis.UniversalClient
	timeout  time.Duration
	fallback Clock
	log      logx.Logger
}

var _ Clock = (*RedisClock)(nil)

// NewRedisClock creates a RedisClock.
func NewRedisClock(cfg RedisClockConfig) (*RedisClock, error) {
	if err := validation.ValidateNotNil("hosttimer", "client", cfg.Client); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("hosttimer", "timeout", cfg.Timeout); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 50 * time.Millisecond
	}

	fallback := cfg.Fallback
	if fallback == nil {
		fallback = SystemClock{}
	}

	return &RedisClock{
		client:   cfg.Client,
		timeout:  timeout,
		fallback: fallback,
		log:      cfg.Logger.With(logx.String("clock", "redis")),
	}, nil
}

// Now implements Clock. On any Redis failure it returns the fallback clock's time.
func (c *RedisClock) Now() time.Time {
	t, err := c.Time(context.Background())
	if err != nil {
		c.log.Warn("redis clock unavailable, using fallback", logx.Err(err))
		return c.fallback.Now()
	}
	return t
}

// Time returns the Redis server time, bounded by the configured timeout.
func (c *RedisClock) Time(ctx context.Context) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t, err := c.client.Time(ctx).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = tferrors.ErrTimeout
		}
		return time.Time{}, tferrors.NewOperationError("hosttimer", "RedisTime", err)
	}
	return t, nil
}
