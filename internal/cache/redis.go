package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// log is the process-wide logger configured by the command entry point
var log = logrus.StandardLogger()

const (
	stateKeyPrefix = "calassist:oauth-state:"
	lockKeyPrefix  = "calassist:lock:"

	defaultLockTTL      = 30 * time.Second
	defaultPollInterval = 50 * time.Millisecond
)

// Connect opens a client from a redis:// URL and checks it with PING
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	log.WithField("addr", opts.Addr).Info("Connected to redis")
	return client, nil
}

// StateLedger records redeemed OAuth state tokens so each is accepted once
type StateLedger struct {
	client *redis.Client
}

func NewStateLedger(client *redis.Client) *StateLedger {
	return &StateLedger{client: client}
}

// MarkConsumed returns true the first time state is seen within ttl
func (l *StateLedger) MarkConsumed(ctx context.Context, state string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, stateKeyPrefix+state, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark state consumed: %w", err)
	}
	if !ok {
		log.Warn("Rejected replayed OAuth state")
	}
	return ok, nil
}

// releaseScript deletes the lock only if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a best-effort distributed mutex. The TTL bounds how long a crashed
// holder can block others.
type Locker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client, ttl: defaultLockTTL, pollInterval: defaultPollInterval}
}

// Lock blocks until key is acquired or ctx is done
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Release with a fresh context so a cancelled request still unlocks.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
					log.WithError(err).WithField("key", key).Warn("Failed to release lock")
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}
