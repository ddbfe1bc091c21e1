// Package redis provides the shared font list cache and session revocation
// list backed by Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/louisbranch/typeshelf/internal/fonts"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
)

// ErrUnavailable wraps transport failures talking to Redis.
var ErrUnavailable = errors.New("redis unavailable")

const (
	defaultPrefix  = "typeshelf"
	fontListKey    = "fonts:list"
	revokedKeyRoot = "sessions:revoked"
	// fontListVersion is bumped when the cached JSON shape changes.
	fontListVersion = 1
)

// DefaultFontListTTL bounds how long a cached list may outlive a missed
// invalidation from another process.
const DefaultFontListTTL = 10 * time.Minute

type cachedFontList struct {
	Version int          `json:"v"`
	Fonts   []fonts.Font `json:"fonts"`
}

// Store implements the web cache and revocation contracts on one client.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore wraps client. prefix namespaces every key; ttl bounds cached
// font lists.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultFontListTTL
	}
	return &Store{redis: client, prefix: prefix, ttl: ttl}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr string) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrUnavailable, addr, err)
	}
	return NewStore(client, defaultPrefix, DefaultFontListTTL), nil
}

// Close releases the client.
func (s *Store) Close() error {
	if s == nil || s.redis == nil {
		return nil
	}
	return s.redis.Close()
}

func (s *Store) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

// GetFontList returns the cached list. ok is false on a miss or when the
// cached payload is from an older shape.
func (s *Store) GetFontList(ctx context.Context) ([]fonts.Font, bool, error) {
	if s == nil || s.redis == nil {
		return nil, false, fmt.Errorf("cache is not configured")
	}
	data, err := s.redis.Get(ctx, s.key(fontListKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var cached cachedFontList
	if err := json.Unmarshal(data, &cached); err != nil || cached.Version != fontListVersion {
		return nil, false, nil
	}
	if cached.Fonts == nil {
		cached.Fonts = []fonts.Font{}
	}
	return cached.Fonts, true, nil
}

// PutFontList caches the full list.
func (s *Store) PutFontList(ctx context.Context, list []fonts.Font) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("cache is not configured")
	}
	payload, err := json.Marshal(cachedFontList{Version: fontListVersion, Fonts: list})
	if err != nil {
		return fmt.Errorf("encode font list: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(fontListKey), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// InvalidateFontList drops the cached list. Missing keys are not an error.
func (s *Store) InvalidateFontList(ctx context.Context) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("cache is not configured")
	}
	if err := s.redis.Del(ctx, s.key(fontListKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokeSession marks a session id revoked until its token would have
// expired anyway.
func (s *Store) RevokeSession(ctx context.Context, sessionID string, remaining time.Duration) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("revocations are not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if remaining <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.key(revokedKeyRoot, sessionID), "1", remaining).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsSessionRevoked reports whether RevokeSession recorded sessionID.
func (s *Store) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	if s == nil || s.redis == nil {
		return false, fmt.Errorf("revocations are not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, s.key(revokedKeyRoot, sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

var (
	_ webstorage.FontListCache      = (*Store)(nil)
	_ webstorage.SessionRevocations = (*Store)(nil)
)
