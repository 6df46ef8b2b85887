// ABOUTME: Tests for the per-collection snapshot cache
// ABOUTME: Covers last-completion-wins refreshes, atomic snapshots, invalidation and TTL expiry

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLoader(items ...int) (Loader[int], *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context) ([]int, bool) {
		calls.Add(1)
		return append([]int(nil), items...), true
	}, &calls
}

func TestCollection_GetEmpty(t *testing.T) {
	load, calls := staticLoader(1, 2)
	c := NewCollection(Accounts, load)

	items, ok := c.Get()
	assert.False(t, ok)
	assert.Nil(t, items)
	assert.Equal(t, int32(0), calls.Load(), "Get never loads")
}

func TestCollection_LoadRefreshesOnce(t *testing.T) {
	load, calls := staticLoader(1, 2, 3)
	c := NewCollection(Accounts, load)

	items, ok := c.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, items)

	items, ok = c.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, items)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCollection_GetReturnsCopy(t *testing.T) {
	load, _ := staticLoader(1, 2, 3)
	c := NewCollection(Accounts, load)
	_, _ = c.Refresh(context.Background())

	items, _ := c.Get()
	items[0] = 99

	again, _ := c.Get()
	assert.Equal(t, 1, again[0])
}

func TestCollection_EmptyListingIsASnapshot(t *testing.T) {
	load, calls := staticLoader()
	c := NewCollection(DelegationRules, load)

	items, ok := c.Load(context.Background())
	require.True(t, ok)
	assert.Empty(t, items)

	_, ok = c.Get()
	assert.True(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCollection_InvalidateForcesRefresh(t *testing.T) {
	load, calls := staticLoader(7)
	c := NewCollection(Accounts, load)

	_, _ = c.Load(context.Background())
	c.Invalidate()

	_, ok := c.Get()
	assert.False(t, ok)

	_, ok = c.Load(context.Background())
	assert.True(t, ok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCollection_FailedRefreshKeepsSnapshot(t *testing.T) {
	fail := false
	c := NewCollection(Accounts, func(ctx context.Context) ([]int, bool) {
		if fail {
			return nil, false
		}
		return []int{1, 2}, true
	})

	_, ok := c.Refresh(context.Background())
	require.True(t, ok)

	fail = true
	items, ok := c.Refresh(context.Background())
	assert.False(t, ok)
	assert.Nil(t, items)

	kept, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, kept)
}

func TestCollection_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	load, calls := staticLoader(1)
	c := NewCollection(Templates, load, WithTTL(time.Minute), withClock(func() time.Time { return now }))

	_, _ = c.Load(context.Background())

	now = now.Add(30 * time.Second)
	_, ok := c.Get()
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = c.Get()
	assert.False(t, ok, "expired snapshot")

	_, _ = c.Load(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestCollection_LastCompletionWins(t *testing.T) {
	// The first refresh is held until the second has completed, so the
	// first response is the last one observed.
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	responses := [][]int{{1, 1, 1}, {2, 2, 2, 2}}
	var started sync.WaitGroup
	started.Add(2)

	var n atomic.Int32
	c := NewCollection(Accounts, func(ctx context.Context) ([]int, bool) {
		i := n.Add(1) - 1
		started.Done()
		<-gates[i]
		return responses[i], true
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.Refresh(context.Background())
	}()
	// Make sure the goroutine above owns call index 0.
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Refresh(context.Background())
	}()
	started.Wait()

	close(gates[1])
	<-done
	second, _ := c.Get()
	assert.Equal(t, []int{2, 2, 2, 2}, second)

	close(gates[0])
	wg.Wait()
	final, _ := c.Get()
	assert.Equal(t, []int{1, 1, 1}, final)
}

func TestCollection_NoPartialReads(t *testing.T) {
	var version atomic.Int32
	c := NewCollection(Accounts, func(ctx context.Context) ([]int, bool) {
		v := int(version.Add(1))
		items := make([]int, 50+v%7)
		for i := range items {
			items[i] = v
		}
		return items, true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = c.Refresh(ctx)
			}
		}()
	}

	var mixed atomic.Int32
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				items, ok := c.Get()
				if !ok || len(items) == 0 {
					continue
				}
				v := items[0]
				if len(items) != 50+v%7 {
					mixed.Add(1)
				}
				for _, x := range items {
					if x != v {
						mixed.Add(1)
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), mixed.Load())
}

type invalidateCounter struct{ n int }

func (i *invalidateCounter) Invalidate() { i.n++ }

func TestRegistry_Invalidate(t *testing.T) {
	r := NewRegistry()
	accounts := &invalidateCounter{}
	rules := &invalidateCounter{}
	r.Register(Accounts, accounts)
	r.Register(DelegationRules, rules)

	r.Invalidate(DelegationRules, Key("unknown"))
	assert.Equal(t, 0, accounts.n)
	assert.Equal(t, 1, rules.n)

	r.Invalidate(Accounts, DelegationRules)
	assert.Equal(t, 1, accounts.n)
	assert.Equal(t, 2, rules.n)

	assert.ElementsMatch(t, []Key{Accounts, DelegationRules}, r.Keys())
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() { r.Invalidate(Accounts) })
}

func TestRegistry_WithCollection(t *testing.T) {
	load, calls := staticLoader(1)
	c := NewCollection(Accounts, load)
	r := NewRegistry()
	r.Register(c.Key(), c)

	_, _ = c.Load(context.Background())
	r.Invalidate(Accounts)
	_, _ = c.Load(context.Background())

	assert.Equal(t, int32(2), calls.Load())
}
