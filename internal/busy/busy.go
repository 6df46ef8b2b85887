// ABOUTME: Global busy indicator toggled by the request gateway around every call
// ABOUTME: Provides the plain boolean flag and a reference-counted alternative

package busy

import (
	"sync"
)

// Indicator is acquired when a call starts and released when it ends.
type Indicator interface {
	Acquire()
	Release()
	Visible() bool
}

// Mode selects an Indicator implementation.
type Mode string

const (
	// ModeFlag is a plain show/hide boolean. Overlapping calls may hide the
	// indicator before the last one finishes.
	ModeFlag Mode = "flag"
	// ModeCounted keeps the indicator visible until every call has released it.
	ModeCounted Mode = "counted"
)

// New returns an indicator for mode; onChange (may be nil) is called with the
// new visibility whenever it flips.
func New(mode Mode, onChange func(visible bool)) Indicator {
	if mode == ModeCounted {
		return &Counter{onChange: onChange}
	}
	return &Flag{onChange: onChange}
}

// Flag is a boolean indicator: Acquire shows, Release hides.
type Flag struct {
	mu       sync.Mutex
	visible  bool
	onChange func(bool)
}

// NewFlag creates a boolean indicator.
func NewFlag(onChange func(bool)) *Flag {
	return &Flag{onChange: onChange}
}

// Acquire shows the indicator.
func (f *Flag) Acquire() { f.set(true) }

// Release hides the indicator, even if other calls are still running.
func (f *Flag) Release() { f.set(false) }

// Visible reports whether the indicator is shown.
func (f *Flag) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

func (f *Flag) set(v bool) {
	f.mu.Lock()
	changed := f.visible != v
	f.visible = v
	cb := f.onChange
	f.mu.Unlock()

	if changed && cb != nil {
		cb(v)
	}
}

// Counter is a reference-counted indicator.
type Counter struct {
	mu       sync.Mutex
	active   int
	onChange func(bool)
}

// NewCounter creates a reference-counted indicator.
func NewCounter(onChange func(bool)) *Counter {
	return &Counter{onChange: onChange}
}

// Acquire increments the active call count.
func (c *Counter) Acquire() {
	c.mu.Lock()
	c.active++
	show := c.active == 1
	cb := c.onChange
	c.mu.Unlock()

	if show && cb != nil {
		cb(true)
	}
}

// Release decrements the active call count. Extra releases are ignored.
func (c *Counter) Release() {
	c.mu.Lock()
	if c.active == 0 {
		c.mu.Unlock()
		return
	}
	c.active--
	hide := c.active == 0
	cb := c.onChange
	c.mu.Unlock()

	if hide && cb != nil {
		cb(false)
	}
}

// Visible reports whether any call holds the indicator.
func (c *Counter) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active > 0
}

// Active returns the number of calls currently holding the indicator.
func (c *Counter) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Recorder wraps an Indicator and counts Acquire/Release calls.
type Recorder struct {
	Indicator

	mu       sync.Mutex
	acquired int
	released int
}

// NewRecorder wraps inner; a nil inner uses a Flag.
func NewRecorder(inner Indicator) *Recorder {
	if inner == nil {
		inner = NewFlag(nil)
	}
	return &Recorder{Indicator: inner}
}

// Acquire records and forwards.
func (r *Recorder) Acquire() {
	r.mu.Lock()
	r.acquired++
	r.mu.Unlock()
	r.Indicator.Acquire()
}

// Release records and forwards.
func (r *Recorder) Release() {
	r.mu.Lock()
	r.released++
	r.mu.Unlock()
	r.Indicator.Release()
}

// Counts returns how many times Acquire and Release were called.
func (r *Recorder) Counts() (acquired, released int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired, r.released
}
