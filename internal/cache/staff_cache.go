// Package cache keeps a short-lived copy of the CRM staff directory so the
// admin dashboard and assignment dropdowns do not hit the CRM on every view.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// StaffDirectoryKey is the Redis key holding the cached staff list.
const StaffDirectoryKey = "portal:staff:directory"

// StaffCache stores the full staff list. A miss is reported as ok=false;
// errors are returned so callers can log them and fall back to the CRM.
type StaffCache interface {
	Get(ctx context.Context) (staff []domain.Staff, ok bool, err error)
	Set(ctx context.Context, staff []domain.Staff) error
	Invalidate(ctx context.Context) error
}

type cachedStaff struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Department   string              `json:"department"`
	Skillset     []string            `json:"skillset"`
	Availability domain.Availability `json:"availability"`
	Role         domain.Role         `json:"role"`
}

// RedisStaffCache stores the list as one JSON document with a TTL.
type RedisStaffCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStaffCache builds a cache over the given client. A zero ttl keeps
// entries until they are invalidated.
func NewRedisStaffCache(client redis.Cmdable, ttl time.Duration) *RedisStaffCache {
	return &RedisStaffCache{client: client, ttl: ttl}
}

func (c *RedisStaffCache) Get(ctx context.Context) ([]domain.Staff, bool, error) {
	raw, err := c.client.Get(ctx, StaffDirectoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	staff, err := decodeStaff(raw)
	if err != nil {
		return nil, false, err
	}
	return staff, true, nil
}

func (c *RedisStaffCache) Set(ctx context.Context, staff []domain.Staff) error {
	raw, err := encodeStaff(staff)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StaffDirectoryKey, raw, c.ttl).Err()
}

func (c *RedisStaffCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, StaffDirectoryKey).Err()
}

// MemoryStaffCache is the single-process fallback.
type MemoryStaffCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	staff   []domain.Staff
	expires time.Time
	loaded  bool
}

func NewMemoryStaffCache(ttl time.Duration) *MemoryStaffCache {
	return &MemoryStaffCache{ttl: ttl, now: time.Now}
}

func (c *MemoryStaffCache) Get(context.Context) ([]domain.Staff, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded || (c.ttl > 0 && c.now().After(c.expires)) {
		return nil, false, nil
	}
	return copyStaff(c.staff), true, nil
}

func (c *MemoryStaffCache) Set(_ context.Context, staff []domain.Staff) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staff = copyStaff(staff)
	c.expires = c.now().Add(c.ttl)
	c.loaded = true
	return nil
}

func (c *MemoryStaffCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staff = nil
	c.loaded = false
	return nil
}

func encodeStaff(staff []domain.Staff) ([]byte, error) {
	out := make([]cachedStaff, 0, len(staff))
	for _, s := range staff {
		out = append(out, cachedStaff{
			ID:           s.ID,
			Name:         s.Name,
			Email:        s.Email,
			Department:   s.Department,
			Skillset:     s.Skillset,
			Availability: s.Availability,
			Role:         s.Role,
		})
	}
	return json.Marshal(out)
}

func decodeStaff(raw []byte) ([]domain.Staff, error) {
	var in []cachedStaff
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	out := make([]domain.Staff, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Staff{
			ID:           s.ID,
			Name:         s.Name,
			Email:        s.Email,
			Department:   s.Department,
			Skillset:     s.Skillset,
			Availability: s.Availability,
			Role:         s.Role,
		})
	}
	return out, nil
}

func copyStaff(staff []domain.Staff) []domain.Staff {
	out := make([]domain.Staff, len(staff))
	for i, s := range staff {
		s.Skillset = append([]string{}, s.Skillset...)
		out[i] = s
	}
	return out
}
