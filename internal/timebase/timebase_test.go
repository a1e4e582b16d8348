package timebase

import (
	"errors"
	"io"
	"testing"
)

func millisIndex(t *testing.T, n int) *Index {
	t.Helper()
	ts := make([]int64, n)
	for i := range ts {
		ts[i] = int64(i) * 1000
	}
	idx, err := Build(NewSliceSource(ts), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return idx
}

func TestLowestFrameAtOrAfter(t *testing.T) {
	idx := millisIndex(t, 1000)

	tests := []struct {
		ts      int64
		ordinal int
		found   bool
	}{
		{1500, 2, true},
		{0, 0, true},
		{-5, 0, true},
		{1000, 1, true},
		{1001, 2, true},
		{999000, 999, true},
		{999001, 0, false},
	}

	for _, tt := range tests {
		f, ok := idx.LowestFrameAtOrAfter(tt.ts)
		if ok != tt.found {
			t.Errorf("LowestFrameAtOrAfter(%d) found = %v, want %v", tt.ts, ok, tt.found)
			continue
		}
		if ok && f.Ordinal != tt.ordinal {
			t.Errorf("LowestFrameAtOrAfter(%d) = %d, want %d", tt.ts, f.Ordinal, tt.ordinal)
		}
	}
}

func TestLowestFrameAtOrAfterEmptyIndex(t *testing.T) {
	idx, err := Build(NewSliceSource(nil), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if _, ok := idx.LowestFrameAtOrAfter(0); ok {
		t.Error("expected no frame in empty index")
	}
	if idx.Duration() != 0 {
		t.Errorf("Duration = %d, want 0", idx.Duration())
	}
}

func TestLowestFrameAtOrAfterReturnsFirstOfDuplicates(t *testing.T) {
	idx, err := Build(NewSliceSource([]int64{0, 40, 40, 40, 80}), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	f, ok := idx.LowestFrameAtOrAfter(40)
	if !ok || f.Ordinal != 1 {
		t.Errorf("LowestFrameAtOrAfter(40) = %+v, %v; want ordinal 1", f, ok)
	}
	f, ok = idx.FrameAt(40)
	if !ok || f.Ordinal != 1 {
		t.Errorf("FrameAt(40) = %+v, %v; want ordinal 1", f, ok)
	}
	if _, ok := idx.FrameAt(41); ok {
		t.Error("FrameAt(41) should not match")
	}
}

func TestFrameByOrdinal(t *testing.T) {
	idx := millisIndex(t, 10)

	f, ok := idx.FrameByOrdinal(3)
	if !ok || f.Timestamp != 3000 {
		t.Errorf("FrameByOrdinal(3) = %+v, %v", f, ok)
	}
	for _, n := range []int{-1, 10} {
		if _, ok := idx.FrameByOrdinal(n); ok {
			t.Errorf("FrameByOrdinal(%d) should be absent", n)
		}
	}
}

func TestResolve(t *testing.T) {
	idx := millisIndex(t, 10)

	tests := []struct {
		name     string
		value    int64
		from, to Kind
		want     int64
	}{
		{"time to time", 1234, KindTime, KindTime, 1234},
		{"frame to frame", 77, KindFrame, KindFrame, 77},
		{"frame to time", 4, KindFrame, KindTime, 4000},
		{"time to frame rounds later", 4001, KindTime, KindFrame, 5},
		{"time past end", 9001, KindTime, KindFrame, PastEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Resolve(tt.value, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%d, %s, %s) = %d, want %d", tt.value, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestResolveFrameOutOfRange(t *testing.T) {
	idx := millisIndex(t, 10)

	for _, ordinal := range []int64{10, -1, PastEnd} {
		_, err := idx.Resolve(ordinal, KindFrame, KindTime)
		var le *LookupError
		if !errors.As(err, &le) {
			t.Fatalf("Resolve(%d) error = %v, want *LookupError", ordinal, err)
		}
		if le.Ordinal != ordinal || le.Frames != 10 {
			t.Errorf("LookupError = %+v", le)
		}
	}
}

func TestBuildReportsProgress(t *testing.T) {
	ts := make([]int64, 2*ProgressInterval+5)
	for i := range ts {
		ts[i] = int64(i) * 40000
	}

	var calls []int
	idx, err := Build(NewSliceSource(ts), func(n int) {
		calls = append(calls, n)
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if idx.Len() != len(ts) {
		t.Errorf("Len = %d, want %d", idx.Len(), len(ts))
	}
	if len(calls) != 2 || calls[0] != ProgressInterval || calls[1] != 2*ProgressInterval {
		t.Errorf("progress calls = %v", calls)
	}
}

type brokenSource struct {
	left int
}

func (s *brokenSource) Next() (int64, error) {
	if s.left == 0 {
		return 0, errors.New("pipe closed")
	}
	s.left--
	return 0, nil
}

func TestBuildPropagatesSourceError(t *testing.T) {
	_, err := Build(&brokenSource{left: 3}, nil)
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Build error = %v, want source error", err)
	}
}
