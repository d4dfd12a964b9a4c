package model_test

import (
	"testing"
	"time"

	"co2-monitor/internal/model"
)

func TestMillisFloors(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := model.Millis(base); got != base.UnixMilli() {
		t.Fatalf("whole millisecond changed: %d vs %d", got, base.UnixMilli())
	}
	// 1.999999ms past the second floors to 1ms, never rounds up to 2ms
	if got := model.Millis(base.Add(1_999_999 * time.Nanosecond)); got != base.UnixMilli()+1 {
		t.Fatalf("expected floor to +1ms, got +%dms", got-base.UnixMilli())
	}
}

func TestMillisMonotonicUnderRepeatedRounding(t *testing.T) {
	t.Parallel()
	prev := int64(0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		cur := model.Millis(base.Add(time.Duration(i) * 333 * time.Microsecond))
		if cur < prev {
			t.Fatalf("rounding went backwards at step %d: %d after %d", i, cur, prev)
		}
		prev = cur
	}
}

func TestFromMillisRoundTrip(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
	if got := model.FromMillis(model.Millis(at)); !got.Equal(at) {
		t.Fatalf("round trip changed time: %v vs %v", got, at)
	}
}
