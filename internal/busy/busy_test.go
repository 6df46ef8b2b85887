package busy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlag_OverlappingCallsHideEarly(t *testing.T) {
	f := NewFlag(nil)

	f.Acquire() // call A
	f.Acquire() // call B
	f.Release() // A finishes

	// Plain flag: B is still running but the indicator is already hidden.
	assert.False(t, f.Visible())
}

func TestFlag_OnChangeOnlyOnFlip(t *testing.T) {
	var changes []bool
	f := NewFlag(func(v bool) { changes = append(changes, v) })

	f.Acquire()
	f.Acquire()
	f.Release()
	f.Release()

	assert.Equal(t, []bool{true, false}, changes)
}

func TestCounter_StaysVisibleUntilLastRelease(t *testing.T) {
	var changes []bool
	c := NewCounter(func(v bool) { changes = append(changes, v) })

	c.Acquire()
	c.Acquire()
	c.Release()
	assert.True(t, c.Visible())
	assert.Equal(t, 1, c.Active())

	c.Release()
	assert.False(t, c.Visible())
	assert.Equal(t, []bool{true, false}, changes)
}

func TestCounter_ExtraReleaseIgnored(t *testing.T) {
	c := NewCounter(nil)
	c.Release()
	assert.Equal(t, 0, c.Active())

	c.Acquire()
	c.Release()
	c.Release()
	assert.Equal(t, 0, c.Active())
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Acquire()
			c.Release()
		}()
	}
	wg.Wait()

	assert.False(t, c.Visible())
}

func TestNew_SelectsMode(t *testing.T) {
	assert.IsType(t, &Flag{}, New(ModeFlag, nil))
	assert.IsType(t, &Counter{}, New(ModeCounted, nil))
	assert.IsType(t, &Flag{}, New("", nil))
}

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder(nil)
	r.Acquire()
	assert.True(t, r.Visible())
	r.Release()

	acquired, released := r.Counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)
	assert.False(t, r.Visible())
}
