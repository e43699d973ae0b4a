package gateway

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/employee"
)

// CachedEmployeeRepository keeps the roster in memory for ttl. Concurrent
// misses share one gateway call. Writes go straight through and drop the
// cached roster.
type CachedEmployeeRepository struct {
	inner employee.EmployeeRepository
	ttl   time.Duration
	now   func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	roster    []employee.Employee
	fetchedAt time.Time
	// generation is bumped by Invalidate so a fetch that started before a
	// write does not repopulate the cache with stale data.
	generation uint64
}

func NewCachedEmployeeRepository(inner employee.EmployeeRepository, ttl time.Duration) *CachedEmployeeRepository {
	return &CachedEmployeeRepository{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
	}
}

// List implements employee.EmployeeRepository.
func (c *CachedEmployeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	if roster, ok := c.cached(); ok {
		return roster, nil
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	v, err, _ := c.group.Do("roster", func() (interface{}, error) {
		roster, err := c.inner.List(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation == gen && c.ttl > 0 {
			c.roster = roster
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()
		return roster, nil
	})
	if err != nil {
		return nil, err
	}
	return copyRoster(v.([]employee.Employee)), nil
}

func (c *CachedEmployeeRepository) cached() ([]employee.Employee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.roster == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return copyRoster(c.roster), true
}

// GetByID implements employee.EmployeeRepository. It always asks the
// gateway so the edit form sees the latest values.
func (c *CachedEmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return c.inner.GetByID(ctx, id)
}

// Create implements employee.EmployeeRepository.
func (c *CachedEmployeeRepository) Create(ctx context.Context, input employee.EmployeeInput) error {
	if err := c.inner.Create(ctx, input); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Update implements employee.EmployeeRepository.
func (c *CachedEmployeeRepository) Update(ctx context.Context, id string, input employee.EmployeeInput) error {
	if err := c.inner.Update(ctx, id, input); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops the cached roster.
func (c *CachedEmployeeRepository) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = nil
	c.fetchedAt = time.Time{}
	c.generation++
}

func copyRoster(src []employee.Employee) []employee.Employee {
	out := make([]employee.Employee, len(src))
	copy(out, src)
	return out
}
