package session

import "time"

// Timer is a pending deferred call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// TimeScheduler schedules with time.AfterFunc.
var TimeScheduler Scheduler = timeScheduler{}
