// Package rwlock implements a readers-writer lock with writer preference,
// per-goroutine reentrancy for both read and write holders, write-to-read
// downgrading, and a forbidden read-to-write upgrade.
//
// sync.RWMutex does not track holder identity and so cannot support
// reentrancy or downgrading; this type is a novel single-condition-variable
// algorithm grounded byte-for-byte on the upstream implementation's thread
// bookkeeping, with goroutine identity substituted for thread identity.
package rwlock

import (
	"bytes"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/resoltico/FTLLexEngine-sub005/internal/invariant"
)

// ErrUpgradeForbidden is returned by Lock/LockTimeout when the calling
// goroutine already holds a read lock: upgrading would deadlock the
// goroutine against itself, so it is rejected instead.
var ErrUpgradeForbidden = errors.New("rwlock: read-to-write upgrade is forbidden")

// ErrTimeout is returned when a bounded acquire could not complete in time.
var ErrTimeout = errors.New("rwlock: timed out acquiring lock")

// ErrNegativeTimeout is returned immediately, before any blocking, when a
// negative duration is passed to a Timeout variant.
var ErrNegativeTimeout = errors.New("rwlock: negative timeout")

// RWMutex is the lock itself. The zero value is not usable; construct with
// New.
type RWMutex struct {
	cond *sync.Cond

	activeReaders      int
	readerEntryCount   map[int64]int
	activeWriter       int64 // 0 means no writer; goroutine ids are always >= 1
	writerReentryCount int
	waitingWriters     int
	writerHeldReads    int
}

// New constructs an unlocked RWMutex.
func New() *RWMutex {
	return &RWMutex{
		cond:             sync.NewCond(&sync.Mutex{}),
		readerEntryCount: make(map[int64]int),
	}
}

// RLock acquires the read lock, blocking indefinitely. The calling
// goroutine may already hold the write lock (downgrading) or a read lock
// (reentrancy); both return immediately.
func (l *RWMutex) RLock() {
	_ = l.rlock(0, false)
}

// RLockTimeout acquires the read lock, waiting at most d. d == 0 tries
// without blocking and returns ErrTimeout immediately on contention; d < 0
// returns ErrNegativeTimeout without attempting to acquire.
func (l *RWMutex) RLockTimeout(d time.Duration) error {
	return l.rlock(d, true)
}

// RUnlock releases one level of read-lock holding. Panics (via
// internal/invariant) if the calling goroutine does not hold a read lock —
// this mirrors sync.Mutex's own panic on an unmatched Unlock, since it is
// always a caller bug rather than a runtime condition.
func (l *RWMutex) RUnlock() {
	gid := goroutineID()
	l.cond.L.Lock()
	defer l.cond.L.Unlock()

	if l.activeWriter == gid && l.writerHeldReads > 0 {
		l.writerHeldReads--
		return
	}

	n, ok := l.readerEntryCount[gid]
	invariant.Invariant(ok, "rwlock: RUnlock called without a matching RLock")

	n--
	if n == 0 {
		delete(l.readerEntryCount, gid)
		l.activeReaders--
		if l.activeReaders == 0 {
			l.cond.Broadcast()
		}
		return
	}
	l.readerEntryCount[gid] = n
}

// Lock acquires the write lock, blocking indefinitely. Returns
// ErrUpgradeForbidden immediately if the calling goroutine already holds a
// read lock.
func (l *RWMutex) Lock() error {
	return l.lock(0, false)
}

// LockTimeout acquires the write lock, waiting at most d. Semantics for d
// match RLockTimeout.
func (l *RWMutex) LockTimeout(d time.Duration) error {
	return l.lock(d, true)
}

// Unlock releases one level of write-lock holding. On the final release of
// a downgraded lock, any writer-held reads convert to a regular read lock
// held by the same goroutine. Panics (via internal/invariant) if the
// calling goroutine does not hold the write lock.
func (l *RWMutex) Unlock() {
	gid := goroutineID()
	l.cond.L.Lock()
	defer l.cond.L.Unlock()

	invariant.Invariant(l.activeWriter == gid, "rwlock: Unlock called by a goroutine that does not hold the write lock")

	if l.writerReentryCount > 0 {
		l.writerReentryCount--
		return
	}

	if l.writerHeldReads > 0 {
		l.activeReaders++
		l.readerEntryCount[gid] = l.writerHeldReads
		l.writerHeldReads = 0
	}

	l.activeWriter = 0
	l.cond.Broadcast()
}

func (l *RWMutex) rlock(d time.Duration, bounded bool) error {
	if bounded && d < 0 {
		return ErrNegativeTimeout
	}
	gid := goroutineID()

	l.cond.L.Lock()
	defer l.cond.L.Unlock()

	if n, ok := l.readerEntryCount[gid]; ok {
		l.readerEntryCount[gid] = n + 1
		return nil
	}
	if l.activeWriter == gid {
		l.writerHeldReads++
		return nil
	}

	deadline := time.Now().Add(d)
	for l.activeWriter != 0 || l.waitingWriters > 0 {
		if bounded {
			if d == 0 {
				return ErrTimeout
			}
			if !l.waitWithDeadline(deadline) {
				return ErrTimeout
			}
		} else {
			l.cond.Wait()
		}
	}

	l.activeReaders++
	l.readerEntryCount[gid] = 1
	return nil
}

func (l *RWMutex) lock(d time.Duration, bounded bool) error {
	if bounded && d < 0 {
		return ErrNegativeTimeout
	}
	gid := goroutineID()

	l.cond.L.Lock()
	defer l.cond.L.Unlock()

	if _, ok := l.readerEntryCount[gid]; ok {
		return ErrUpgradeForbidden
	}
	if l.activeWriter == gid {
		l.writerReentryCount++
		return nil
	}

	l.waitingWriters++
	defer func() { l.waitingWriters-- }()

	deadline := time.Now().Add(d)
	for l.activeReaders > 0 || l.activeWriter != 0 {
		if bounded {
			if d == 0 {
				return ErrTimeout
			}
			if !l.waitWithDeadline(deadline) {
				return ErrTimeout
			}
		} else {
			l.cond.Wait()
		}
	}

	l.activeWriter = gid
	return nil
}

// waitWithDeadline waits on l.cond, guaranteed to be woken by deadline
// (via a one-shot timer that broadcasts), and reports whether the wake was
// before the deadline. l.cond.L must be held on entry and is held again on
// return.
func (l *RWMutex) waitWithDeadline(deadline time.Time) bool {
	timer := time.AfterFunc(time.Until(deadline), func() {
		l.cond.L.Lock()
		l.cond.Broadcast()
		l.cond.L.Unlock()
	})
	defer timer.Stop()
	l.cond.Wait()
	return time.Now().Before(deadline)
}

// goroutineID extracts the calling goroutine's id from the header line of
// runtime.Stack's output ("goroutine 123 [running]:"). Go deliberately
// exposes no public goroutine-id API; this is the conventional workaround
// used where holder identity, not just mutual exclusion, is required.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if idx := bytes.IndexByte(b, ' '); idx >= 0 {
		b = b[:idx]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	invariant.Invariant(err == nil, "rwlock: failed to parse goroutine id from stack header: %v", err)
	return id
}
