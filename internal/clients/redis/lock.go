package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

// SessionLock serializes session mutations per user. A user holds at
// most one active practice session; a second Start or a concurrent
// writer fails with ErrConcurrentSessionConflict.
type SessionLock interface {
	Acquire(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	Release(ctx context.Context, userID uuid.UUID) error
}

type sessionLock struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewSessionLock(log *logger.Logger) (SessionLock, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionLock{log: log.With("service", "SessionLock"), rdb: rdb}, nil
}

func lockKey(userID uuid.UUID) string {
	return "practice:lock:user:" + userID.String()
}

func (l *sessionLock) Acquire(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("session lock not initialized")
	}
	if userID == uuid.Nil {
		return pkgerr.ErrInvalidArgument
	}
	ok, err := l.rdb.SetNX(ctx, lockKey(userID), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return pkgerr.ErrConcurrentSessionConflict
	}
	return nil
}

func (l *sessionLock) Release(ctx context.Context, userID uuid.UUID) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("session lock not initialized")
	}
	return l.rdb.Del(ctx, lockKey(userID)).Err()
}

// localLock is the in-process fallback used when REDIS_ADDR is unset
// and in tests. Same semantics on a single node.
type localLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]time.Time
}

func NewLocalLock() SessionLock {
	return &localLock{held: make(map[uuid.UUID]time.Time)}
}

func (l *localLock) Acquire(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if userID == uuid.Nil {
		return pkgerr.ErrInvalidArgument
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[userID]; ok && time.Now().Before(exp) {
		return pkgerr.ErrConcurrentSessionConflict
	}
	l.held[userID] = time.Now().Add(ttl)
	return nil
}

func (l *localLock) Release(ctx context.Context, userID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, userID)
	return nil
}
