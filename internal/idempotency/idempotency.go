package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInProgress means another request with the same key has not finished yet.
var ErrInProgress = errors.New("a request with this idempotency key is already in progress")

const inFlightMarker = "in-flight"

// Response is a stored final response replayed for retried requests.
type Response struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Store caches checkout responses in Redis under idemp:{userID}:{key}.
type Store struct {
	client    redis.UniversalClient
	ttl       time.Duration
	lockTTL   time.Duration
	keyPrefix string
}

func NewStore(client redis.UniversalClient, ttl, lockTTL time.Duration) *Store {
	return &Store{
		client:    client,
		ttl:       ttl,
		lockTTL:   lockTTL,
		keyPrefix: "idemp",
	}
}

func (s *Store) Key(userID int, key string) string {
	return fmt.Sprintf("%s:%d:%s", s.keyPrefix, userID, key)
}

// Begin claims the key. It returns the stored response when the key has
// already completed, ErrInProgress while another request holds it, and
// (nil, nil) once the caller owns the key.
func (s *Store) Begin(ctx context.Context, userID int, key string) (*Response, error) {
	redisKey := s.Key(userID, key)

	claimed, err := s.client.SetNX(ctx, redisKey, inFlightMarker, s.lockTTL).Result()
	if err != nil {
		return nil, err
	}

	if claimed {
		return nil, nil
	}

	data, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired between the two calls, the caller may retry.
			return nil, ErrInProgress
		}

		return nil, err
	}

	if string(data) == inFlightMarker {
		return nil, ErrInProgress
	}

	var resp Response
	err = json.Unmarshal(data, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored response for %s: %w", redisKey, err)
	}

	return &resp, nil
}

func (s *Store) Complete(ctx context.Context, userID int, key string, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.Key(userID, key), data, s.ttl).Err()
}

// Abandon frees the key so the request can be retried, used when the outcome
// must not be replayed.
func (s *Store) Abandon(ctx context.Context, userID int, key string) error {
	return s.client.Del(ctx, s.Key(userID, key)).Err()
}
