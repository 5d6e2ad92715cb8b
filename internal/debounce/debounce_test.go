package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleLastWriteWins(t *testing.T) {
	d := New(30 * time.Millisecond)

	var got int64
	d.Schedule(func() { atomic.StoreInt64(&got, 1) })
	d.Schedule(func() { atomic.StoreInt64(&got, 2) })
	d.Schedule(func() { atomic.StoreInt64(&got, 3) })

	time.Sleep(100 * time.Millisecond)
	if v := atomic.LoadInt64(&got); v != 3 {
		t.Errorf("executed action = %d, want 3 (only the last scheduled runs)", v)
	}
}

func TestScheduleRunsAfterInterval(t *testing.T) {
	d := New(30 * time.Millisecond)

	var fired int64
	d.Schedule(func() { atomic.AddInt64(&fired, 1) })

	if atomic.LoadInt64(&fired) != 0 {
		t.Error("action ran before the interval elapsed")
	}
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt64(&fired) != 1 {
		t.Error("action did not run after the interval")
	}
}

func TestStopCancelsPending(t *testing.T) {
	d := New(30 * time.Millisecond)

	var fired int64
	d.Schedule(func() { atomic.AddInt64(&fired, 1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt64(&fired) != 0 {
		t.Error("stopped action still ran")
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	d := New(time.Hour)

	var pending, flushed int64
	d.Schedule(func() { atomic.AddInt64(&pending, 1) })
	d.Flush(func() { atomic.AddInt64(&flushed, 1) })

	if atomic.LoadInt64(&flushed) != 1 {
		t.Error("flush did not run the action immediately")
	}
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt64(&pending) != 0 {
		t.Error("flush did not cancel the pending action")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	d := New(0)
	if d.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", d.interval, DefaultInterval)
	}
}
