package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/position"
)

const (
	// sessionKeyPrefix namespaces session-state keys.
	// Format: pivot:session:{instrument}:{YYYYMMDD}
	sessionKeyPrefix = "pivot:session"

	// sessionStateTTL keeps session state past the trading day so a late
	// restart can still inspect it, but not much longer.
	sessionStateTTL = 48 * time.Hour
)

// PersistedSessionState is the engine state that must survive a restart
// mid-session: the open position, the re-entry quota and the trade id
// sequence.
type PersistedSessionState struct {
	Instrument   string             `json:"instrument"`
	Day          string             `json:"day"` // YYYYMMDD
	OpenPosition *position.Position `json:"open_position,omitempty"`
	ReEntryCount int                `json:"re_entry_count"`
	TradeSeq     int                `json:"trade_seq"`
	SavedAt      time.Time          `json:"saved_at"`
}

// ErrNoSessionState is returned when no state exists for the day.
var ErrNoSessionState = errors.New("no session state")

// RedisSessionStateRepository persists session state in Redis with an
// in-memory fallback, so a Redis outage degrades restart durability but
// never stops the trading loop.
type RedisSessionStateRepository struct {
	client         *redis.Client
	log            *logging.Logger
	inMemory       map[string]*PersistedSessionState
	mu             sync.RWMutex
	redisAvailable atomic.Bool
}

// NewRedisSessionStateRepository creates the repository. A nil client means
// memory-only operation.
func NewRedisSessionStateRepository(client *redis.Client) *RedisSessionStateRepository {
	repo := &RedisSessionStateRepository{
		client:   client,
		log:      logging.WithComponent("session-state"),
		inMemory: make(map[string]*PersistedSessionState),
	}

	if client == nil {
		repo.log.Info("No Redis client configured, session state is memory-only")
		return repo
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		repo.log.Warn("Redis unavailable at startup, using in-memory fallback", "error", err)
	} else {
		repo.log.Info("Redis connected")
		repo.redisAvailable.Store(true)
	}
	return repo
}

func sessionKey(instrument, day string) string {
	return fmt.Sprintf("%s:%s:%s", sessionKeyPrefix, instrument, day)
}

// Save writes the session state. The in-memory copy is always updated;
// Redis failures flip the availability flag and are not fatal.
func (r *RedisSessionStateRepository) Save(ctx context.Context, state *PersistedSessionState) error {
	state.SavedAt = time.Now()
	key := sessionKey(state.Instrument, state.Day)

	r.mu.Lock()
	copied := *state
	r.inMemory[key] = &copied
	r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := r.client.Set(ctx, key, data, sessionStateTTL).Err(); err != nil {
		if r.redisAvailable.Swap(false) {
			r.log.Warn("Redis write failed, falling back to memory", "error", err)
		}
		return nil
	}
	r.redisAvailable.Store(true)
	return nil
}

// Load reads the session state for an instrument and day, preferring Redis
// and falling back to the in-memory copy.
func (r *RedisSessionStateRepository) Load(ctx context.Context, instrument, day string) (*PersistedSessionState, error) {
	key := sessionKey(instrument, day)

	if r.client != nil {
		data, err := r.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			r.redisAvailable.Store(true)
			state := &PersistedSessionState{}
			if err := json.Unmarshal(data, state); err != nil {
				return nil, fmt.Errorf("unmarshal session state: %w", err)
			}
			return state, nil
		case errors.Is(err, redis.Nil):
			return nil, ErrNoSessionState
		default:
			if r.redisAvailable.Swap(false) {
				r.log.Warn("Redis read failed, falling back to memory", "error", err)
			}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if state, ok := r.inMemory[key]; ok {
		copied := *state
		return &copied, nil
	}
	return nil, ErrNoSessionState
}

// Clear removes the day's state after a clean end-of-day shutdown.
func (r *RedisSessionStateRepository) Clear(ctx context.Context, instrument, day string) error {
	key := sessionKey(instrument, day)

	r.mu.Lock()
	delete(r.inMemory, key)
	r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Warn("Redis delete failed", "error", err)
	}
	return nil
}

// Available reports whether Redis answered the last operation.
func (r *RedisSessionStateRepository) Available() bool {
	return r.redisAvailable.Load()
}
