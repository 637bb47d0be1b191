// Package clock 可替换的时间源。定时任务通过 Clock 注册计时器，测试用 FakeClock 精确推进时间
package clock

import "time"

type Clock interface {
	Now() time.Time
	// AfterFunc d 之后调用 f；d <= 0 时立即调用
	AfterFunc(d time.Duration, f func()) *Timer
	// NewTicker 按固定间隔向 C 投递时间，d <= 0 时 panic
	NewTicker(d time.Duration) *Ticker
}

type Timer struct {
	stopFunc func() bool
}

// Stop 取消尚未触发的回调，已触发或已取消时返回 false
func (t *Timer) Stop() bool { return t.stopFunc() }

type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

func (t *Ticker) Stop() { t.stopFunc() }

func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stopFunc: timer.Stop}
}

func (realClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stopFunc: ticker.Stop}
}
