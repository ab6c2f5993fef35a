package rwlock_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resoltico/FTLLexEngine-sub005/rwlock"
)

func TestConcurrentReadersProceedTogether(t *testing.T) {
	l := rwlock.New()
	var active int32
	var maxSeen int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RLock()
			defer l.RUnlock()
			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()
	assert.Greater(t, maxSeen, int32(1), "expected multiple readers active concurrently")
}

func TestWriterExcludesReaders(t *testing.T) {
	l := rwlock.New()
	var inWriter int32
	var violated int32
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, l.Lock())
		atomic.StoreInt32(&inWriter, 1)
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&inWriter, 0)
		l.Unlock()
	}()
	time.Sleep(5 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		l.RLock()
		if atomic.LoadInt32(&inWriter) == 1 {
			atomic.StoreInt32(&violated, 1)
		}
		l.RUnlock()
	}()
	wg.Wait()
	assert.EqualValues(t, 0, violated, "reader observed writer section concurrently")
}

func TestReentrantReadLock(t *testing.T) {
	l := rwlock.New()
	l.RLock()
	l.RLock()
	l.RUnlock()
	l.RUnlock() // must not panic or deadlock
}

func TestReentrantWriteLock(t *testing.T) {
	l := rwlock.New()
	require.NoError(t, l.Lock())
	require.NoError(t, l.Lock())
	l.Unlock()
	l.Unlock() // must not panic or deadlock
}

func TestWriteToReadDowngrade(t *testing.T) {
	l := rwlock.New()
	require.NoError(t, l.Lock())
	l.RLock() // downgrade: acquire read while holding write
	l.Unlock()
	// the writer-held read converts to a regular read lock
	l.RUnlock()
}

func TestReadToWriteUpgradeForbidden(t *testing.T) {
	l := rwlock.New()
	l.RLock()
	defer l.RUnlock()

	err := l.Lock()
	assert.ErrorIs(t, err, rwlock.ErrUpgradeForbidden)
}

func TestNegativeTimeoutRaisesImmediately(t *testing.T) {
	l := rwlock.New()
	start := time.Now()
	err := l.RLockTimeout(-1 * time.Second)
	assert.ErrorIs(t, err, rwlock.ErrNegativeTimeout)
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	err = l.LockTimeout(-1 * time.Second)
	assert.ErrorIs(t, err, rwlock.ErrNegativeTimeout)
}

func TestZeroTimeoutTriesWithoutBlocking(t *testing.T) {
	l := rwlock.New()
	require.NoError(t, l.Lock())

	done := make(chan error, 1)
	go func() { done <- l.LockTimeout(0) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, rwlock.ErrTimeout)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("zero-timeout LockTimeout blocked instead of failing immediately")
	}
	l.Unlock()

	// once released, a zero-timeout attempt on an uncontended lock succeeds.
	require.NoError(t, l.LockTimeout(0))
	l.Unlock()
}

func TestWriteLockTimeoutWhileReadersHeld(t *testing.T) {
	l := rwlock.New()
	l.RLock()
	defer l.RUnlock()

	// the writer runs in another goroutine; from this goroutine, which holds
	// the read lock, LockTimeout would be an upgrade and fail immediately.
	start := time.Now()
	errc := make(chan error, 1)
	go func() { errc <- l.LockTimeout(30 * time.Millisecond) }()
	err := <-errc
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, rwlock.ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestWriterPreferenceBlocksNewReaders(t *testing.T) {
	l := rwlock.New()
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	l.RLock() // held by this (test) goroutine for the whole scenario

	writerReady := make(chan struct{})
	go func() {
		close(writerReady)
		require.NoError(t, l.Lock())
		record("writer")
		l.Unlock()
	}()
	<-writerReady
	time.Sleep(10 * time.Millisecond) // let the writer register as waiting

	readerDone := make(chan struct{})
	go func() {
		l.RLock()
		record("late-reader")
		l.RUnlock()
		close(readerDone)
	}()
	time.Sleep(10 * time.Millisecond)

	l.RUnlock() // release the original read lock; writer should win the race
	<-readerDone

	require.Len(t, order, 2)
	assert.Equal(t, "writer", order[0], "writer preference should block the new reader until the writer proceeds")
}

func TestRUnlockWithoutLockPanics(t *testing.T) {
	l := rwlock.New()
	assert.Panics(t, func() { l.RUnlock() })
}

func TestUnlockWithoutLockPanics(t *testing.T) {
	l := rwlock.New()
	assert.Panics(t, func() { l.Unlock() })
}
