package scene

import "testing"

func TestEventLog_RingBuffer(t *testing.T) {
	l := newEventLog(3)
	for i := 0; i < 5; i++ {
		l.add(Event{SimTime: float64(i)})
	}

	got := l.ordered()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []float64{2, 3, 4} {
		if got[i].SimTime != want {
			t.Errorf("event %d SimTime = %v, want %v", i, got[i].SimTime, want)
		}
	}

	recent := l.recent(2)
	if len(recent) != 2 || recent[1].SimTime != 4 {
		t.Errorf("recent(2) = %+v", recent)
	}
}

func TestEventLog_Empty(t *testing.T) {
	l := newEventLog(0)
	if l.max != DefaultMaxEvents {
		t.Errorf("max = %d, want %d", l.max, DefaultMaxEvents)
	}
	if l.ordered() != nil {
		t.Error("empty log should return nil")
	}
}

func TestEventLog_RecentCounts(t *testing.T) {
	l := newEventLog(5)
	for i := 0; i < 3; i++ {
		l.add(Event{SimTime: float64(i)})
	}

	tests := []struct {
		n    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{2, 2},
		{10, 3},
	}
	for _, tt := range tests {
		if got := l.recent(tt.n); len(got) != tt.want {
			t.Errorf("recent(%d) returned %d events, want %d", tt.n, len(got), tt.want)
		}
	}
}
