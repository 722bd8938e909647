package analyzer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_Basic(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func() {
		callCount.Add(1)
	})

	// Call multiple times rapidly
	for i := 0; i < 10; i++ {
		d.Call()
	}

	time.Sleep(150 * time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("callCount = %d, want 1", callCount.Load())
	}
	if d.IsPending() {
		t.Error("expected nothing pending after firing")
	}
}

func TestDebouncer_SpacedCalls(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(30*time.Millisecond, func() {
		callCount.Add(1)
	})

	for i := 0; i < 3; i++ {
		d.Call()
		time.Sleep(100 * time.Millisecond)
	}

	if callCount.Load() != 3 {
		t.Errorf("callCount = %d, want 3", callCount.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func() {
		callCount.Add(1)
	})

	d.Call()
	if !d.IsPending() {
		t.Error("expected pending call")
	}
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if callCount.Load() != 0 {
		t.Errorf("callCount = %d, want 0 (canceled)", callCount.Load())
	}
}

func TestDebouncer_SetDelay(t *testing.T) {
	d := NewDebouncer(time.Second, func() {})

	d.SetDelay(20 * time.Millisecond)
	if d.Delay() != 20*time.Millisecond {
		t.Errorf("Delay() = %v, want 20ms", d.Delay())
	}

	d.SetDelay(0)
	if d.Delay() != 20*time.Millisecond {
		t.Error("non-positive delay should be ignored")
	}
}
