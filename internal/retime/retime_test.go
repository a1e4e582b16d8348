package retime

import (
	"errors"
	"testing"

	"github.com/mgpai22/subshift/internal/timecode"
)

func TestIdentity(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if !tr.IsIdentity() {
		t.Fatal("expected identity transform")
	}
	for _, v := range []int64{-5, 0, 1, 3_600_000_000, 1 << 50} {
		if got := tr.Apply(v); got != v {
			t.Errorf("Apply(%d) = %d", v, got)
		}
	}
}

func TestSingleAnchorIsConstantShift(t *testing.T) {
	tr, err := New(Anchor{Time: 5_000_000, Shift: 200_000})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tests := map[int64]int64{
		5_000_000:  5_200_000,
		10_000_000: 10_200_000,
		0:          200_000,
		-1_000_000: -800_000,
	}
	for in, want := range tests {
		if got := tr.Apply(in); got != want {
			t.Errorf("Apply(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTwoAnchorsInterpolate(t *testing.T) {
	tr, err := New(
		Anchor{Time: 0, Shift: 0},
		Anchor{Time: 10_000_000, Shift: 500_000},
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tests := map[int64]int64{
		0:          0,
		5_000_000:  5_250_000,
		10_000_000: 10_500_000,
		20_000_000: 21_000_000,
	}
	for in, want := range tests {
		if got := tr.Apply(in); got != want {
			t.Errorf("Apply(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestApplyLongRecordingDoesNotOverflow(t *testing.T) {
	tr, err := New(
		Anchor{Time: 0, Shift: 0},
		Anchor{Time: 3 * timecode.Hour, Shift: 3 * timecode.Second},
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	got := tr.Apply(6 * timecode.Hour)
	want := 6*timecode.Hour + 6*timecode.Second
	if got != want {
		t.Errorf("Apply(6h) = %d, want %d", got, want)
	}
}

func TestNewRejectsInvalidAnchors(t *testing.T) {
	tests := []struct {
		name    string
		anchors []Anchor
	}{
		{"same time", []Anchor{{Time: 1, Shift: 0}, {Time: 1, Shift: 5}}},
		{"too many", []Anchor{{}, {Time: 1}, {Time: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.anchors...)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("New error = %v, want *ConfigError", err)
			}
		})
	}
}

func TestParseAnchor(t *testing.T) {
	a, err := ParseAnchor("1:00=-0.5")
	if err != nil {
		t.Fatalf("ParseAnchor returned error: %v", err)
	}
	if a.Time != timecode.Minute || a.Shift != -500*timecode.Millisecond {
		t.Errorf("ParseAnchor = %+v", a)
	}

	a, err = ParseAnchor("0=+1.5")
	if err != nil {
		t.Fatalf("ParseAnchor with explicit plus returned error: %v", err)
	}
	if a.Time != 0 || a.Shift != 1500*timecode.Millisecond {
		t.Errorf("ParseAnchor(\"0=+1.5\") = %+v", a)
	}

	for _, spec := range []string{"10", "x=1", "1=y", ""} {
		_, err := ParseAnchor(spec)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("ParseAnchor(%q) error = %v, want *ConfigError", spec, err)
		}
	}

	_, err = ParseAnchor("x=1")
	var fe *timecode.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("ParseAnchor(\"x=1\") should wrap *timecode.FormatError, got %v", err)
	}
}

func TestFromSpecs(t *testing.T) {
	tr, err := FromSpecs([]string{"0=0", "10=0.5"})
	if err != nil {
		t.Fatalf("FromSpecs returned error: %v", err)
	}
	if got := tr.Apply(5 * timecode.Second); got != 5_250_000 {
		t.Errorf("Apply(5s) = %d, want 5250000", got)
	}

	tr, err = FromSpecs(nil)
	if err != nil || !tr.IsIdentity() {
		t.Errorf("FromSpecs(nil) = %v, %v; want identity", tr, err)
	}
}
