package draft

import "time"

// CancelFunc cancels a scheduled task, reporting whether it was stopped
// before running
type CancelFunc func() bool

// Scheduler schedules a single deferred task. Abstracted so tests can drive
// the debounce deterministically instead of sleeping.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

// TimerScheduler is the production scheduler backed by time.AfterFunc
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	timer := time.AfterFunc(d, f)
	return timer.Stop
}
