package checkout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Guard admits at most one outstanding submission.
type Guard interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalGuard is an in-process processing flag.
type LocalGuard struct {
	busy atomic.Bool
}

func (g *LocalGuard) TryAcquire(context.Context) (bool, error) {
	return g.busy.CompareAndSwap(false, true), nil
}

func (g *LocalGuard) Release(context.Context) error {
	g.busy.Store(false)
	return nil
}

// GuardFactory returns the guard for one session.
type GuardFactory func(sessionID string) Guard

// LocalGuards hands out one LocalGuard per session.
type LocalGuards struct {
	guards sync.Map
}

func (l *LocalGuards) For(sessionID string) Guard {
	g, _ := l.guards.LoadOrStore(sessionID, &LocalGuard{})
	return g.(*LocalGuard)
}

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
	CheckoutProcessingKey(sessionID string) string
}

// RedisGuard shares the processing flag across API replicas. The ttl only
// bounds how long a crashed holder can block the session. Each acquisition
// writes its own token and Release only deletes a key still holding it.
type RedisGuard struct {
	client guardStore
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	token string
}

func (g *RedisGuard) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key, token, g.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", g.key, err)
	}
	if ok {
		g.mu.Lock()
		g.token = token
		g.mu.Unlock()
	}
	return ok, nil
}

// Release is a no-op when this guard holds nothing or its key has expired.
func (g *RedisGuard) Release(ctx context.Context) error {
	g.mu.Lock()
	token := g.token
	g.token = ""
	g.mu.Unlock()
	if token == "" {
		return nil
	}
	if _, err := g.client.DelIfValue(ctx, g.key, token); err != nil {
		return fmt.Errorf("release %s: %w", g.key, err)
	}
	return nil
}

// NewRedisGuardFactory builds per-session RedisGuards.
func NewRedisGuardFactory(client guardStore, ttl time.Duration) (GuardFactory, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("processing ttl must be positive")
	}
	return func(sessionID string) Guard {
		return &RedisGuard{client: client, key: client.CheckoutProcessingKey(sessionID), ttl: ttl}
	}, nil
}

// Navigator moves the caller to another view.
type Navigator interface {
	GoTo(route string)
}

// RouteRecorder remembers navigation requests, e.g. to return them as an
// HTTP redirect hint.
type RouteRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *RouteRecorder) GoTo(route string) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
}

// Last returns the most recent route, or "".
func (r *RouteRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// Calls reports how many times GoTo was invoked.
func (r *RouteRecorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}
