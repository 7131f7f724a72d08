package chrono

import (
	"sync"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

// FakeTime is a TimeAPI that only moves when told to.
type FakeTime struct {
	lock *sync.Mutex
	now  *time.Time
}

// NewFakeTime is the constructor of FakeTime, the clock starts at `start`.
func NewFakeTime(start time.Time) FakeTime {
	return FakeTime{lock: &sync.Mutex{}, now: &start}
}

func (f FakeTime) Now() time.Time {
	f.lock.Lock()
	defer f.lock.Unlock()
	return *f.now
}

// Advance moves the clock forward by d.
func (f FakeTime) Advance(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	*f.now = f.now.Add(d)
}
