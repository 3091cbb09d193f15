package service

import "sync"

// SeatLocks serializes mutating seat operations per bus. Locks for distinct
// buses never contend; there is no global lock. One instance is shared by the
// bus and reservation services so a bus delete cannot interleave with a
// booking on the same bus.
type SeatLocks struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewSeatLocks creates an empty lock set.
func NewSeatLocks() *SeatLocks {
	return &SeatLocks{}
}

// lock acquires the mutex for a bus, creating it on first use.
func (l *SeatLocks) lock(busID int64) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(busID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m
}

// forget drops the lock entry for a bus that no longer exists. Goroutines
// already waiting on the old mutex proceed and then fail their existence
// check; later callers get a fresh mutex.
func (l *SeatLocks) forget(busID int64) {
	l.locks.Delete(busID)
}
