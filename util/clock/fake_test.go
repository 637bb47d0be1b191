package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestFakeAfterFuncFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(30*time.Minute, func() { fired++ })

	c.Advance(29 * time.Minute)
	assert.Equal(t, 0, fired)

	c.Advance(time.Minute)
	assert.Equal(t, 1, fired)

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired, "one-shot timer must not fire twice")
}

func TestFakeAfterFuncStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Minute, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Hour)
	assert.False(t, fired)
	assert.Equal(t, 0, c.PendingCount())
}

func TestFakeTickerReschedules(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Hour)
	defer ticker.Stop()

	c.Advance(time.Hour)
	select {
	case now := <-ticker.C:
		assert.Equal(t, epoch.Add(time.Hour), now)
	default:
		t.Fatal("ticker did not fire")
	}

	c.Advance(time.Hour)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire a second time")
	}
	assert.Equal(t, 1, c.PendingCount())
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		c.AfterFunc(time.Second, func() { close(done) })
	}()

	c.WaitForTimers(1)
	c.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "callback not invoked")
	}
}
