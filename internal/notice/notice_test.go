// ABOUTME: Tests for notice localization and the fan-out broadcaster
// ABOUTME: Covers catalog languages, fallbacks, subscription lifecycle and slow subscribers

package notice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_English(t *testing.T) {
	c, err := NewCatalog("en")
	require.NoError(t, err)

	msg := c.Message(Notice{Kind: KindHTTP, Status: 404, Detail: "Rule not found"})
	assert.Equal(t, "API error (404): Rule not found", msg)
}

func TestCatalog_Russian(t *testing.T) {
	c, err := NewCatalog("ru")
	require.NoError(t, err)

	msg := c.Message(Notice{Kind: KindNetwork, Detail: "timeout"})
	assert.Contains(t, msg, "Сетевая ошибка: timeout")
	assert.Equal(t, "ru", c.Lang())
}

func TestCatalog_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	c, err := NewCatalog("xx")
	require.NoError(t, err)

	msg := c.Message(Notice{Kind: KindAuth})
	assert.Contains(t, msg, "Authentication error")
}

func TestCatalog_NilUsesFallback(t *testing.T) {
	var c *Catalog
	msg := c.Message(Notice{Kind: KindConfig, Detail: "path prefix"})
	assert.Equal(t, "App configuration error (path prefix).", msg)
	assert.Equal(t, "en", c.Lang())
}

func TestNotice_StringPrefersText(t *testing.T) {
	n := Notice{Kind: KindHTTP, Status: 500, Detail: "boom", Text: "custom"}
	assert.Equal(t, "custom", n.String())

	n.Text = ""
	assert.Equal(t, "API error (500): boom", n.String())
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1, _ := b.Subscribe(ctx)
	ch2, _ := b.Subscribe(ctx)

	b.Notify(Notice{Kind: KindNetwork, Detail: "refused"})

	for _, ch := range []<-chan Notice{ch1, ch2} {
		select {
		case n := <-ch:
			assert.Equal(t, KindNetwork, n.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive notice")
		}
	}
}

func TestBroadcaster_UnsubscribeOnCancel(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)
	cancel()

	// Channel is closed once the cleanup goroutine runs.
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, _ := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufferSize*2; i++ {
			b.Notify(Notice{Kind: KindHTTP, Status: 500})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBufferSize)
}

func TestBroadcaster_SubscribeAfterClose(t *testing.T) {
	b := NewBroadcaster(nil)
	b.Close()

	ch, _ := b.Subscribe(context.Background())
	_, ok := <-ch
	assert.False(t, ok)

	// Must not panic.
	b.Notify(Notice{Kind: KindAuth})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	assert.False(t, ok)

	r.Notify(Notice{Kind: KindHTTP})
	r.Notify(Notice{Kind: KindNetwork})
	r.Notify(Notice{Kind: KindHTTP})

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 2, r.Count(KindHTTP))
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, KindHTTP, last.Kind)

	r.Reset()
	assert.Equal(t, 0, r.Len())
}
