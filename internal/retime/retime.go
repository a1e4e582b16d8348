package retime

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/mgpai22/subshift/internal/timecode"
)

// ConfigError reports an invalid delay specification or conflicting options.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Anchor is one control point of the transform: at Time, cues move by Shift.
type Anchor struct {
	Time  int64
	Shift int64
}

// parses "time=shift", e.g. "1:00=0.5" or "0=-1.2"
func ParseAnchor(spec string) (Anchor, error) {
	timePart, shiftPart, ok := strings.Cut(spec, "=")
	if !ok {
		return Anchor{}, &ConfigError{
			Msg: fmt.Sprintf("invalid delay %q: expected time=shift", spec),
		}
	}

	at, err := timecode.Parse(timePart)
	if err != nil {
		return Anchor{}, &ConfigError{
			Msg: fmt.Sprintf("invalid delay %q", spec),
			Err: err,
		}
	}
	shift, err := timecode.Parse(shiftPart)
	if err != nil {
		return Anchor{}, &ConfigError{
			Msg: fmt.Sprintf("invalid delay %q", spec),
			Err: err,
		}
	}

	return Anchor{Time: at, Shift: shift}, nil
}

// Transform is an affine mapping from original to adjusted cue time.
type Transform struct {
	AnchorStart int64
	ShiftStart  int64
	AnchorEnd   int64
	ShiftEnd    int64

	active bool
}

// Identity leaves every time unchanged.
func Identity() Transform {
	return Transform{}
}

// New builds a transform from zero, one or two anchors. A single anchor is a
// constant shift; two anchors stretch linearly between (and beyond) them.
func New(anchors ...Anchor) (Transform, error) {
	switch len(anchors) {
	case 0:
		return Identity(), nil
	case 1:
		a := anchors[0]
		return Transform{
			AnchorStart: a.Time,
			ShiftStart:  a.Shift,
			AnchorEnd:   a.Time + timecode.Second,
			ShiftEnd:    a.Shift,
			active:      true,
		}, nil
	case 2:
		a, b := anchors[0], anchors[1]
		if a.Time == b.Time {
			return Transform{}, &ConfigError{
				Msg: fmt.Sprintf(
					"delay anchors must be at different times, both at %s",
					formatSigned(a.Time),
				),
			}
		}
		return Transform{
			AnchorStart: a.Time,
			ShiftStart:  a.Shift,
			AnchorEnd:   b.Time,
			ShiftEnd:    b.Shift,
			active:      true,
		}, nil
	default:
		return Transform{}, &ConfigError{
			Msg: fmt.Sprintf("at most two delays are supported, got %d", len(anchors)),
		}
	}
}

// FromSpecs parses "time=shift" strings and builds the transform.
func FromSpecs(specs []string) (Transform, error) {
	anchors := make([]Anchor, 0, len(specs))
	for _, spec := range specs {
		a, err := ParseAnchor(spec)
		if err != nil {
			return Transform{}, err
		}
		anchors = append(anchors, a)
	}
	return New(anchors...)
}

func (t Transform) IsIdentity() bool {
	return !t.active
}

// Apply maps t to its adjusted time:
//
//	(t - t0) / (t1 - t0) * ((t1 + d1) - (t0 + d0)) + (t0 + d0)
//
// The product is computed in arbitrary precision and the quotient truncated
// toward zero.
func (t Transform) Apply(us int64) int64 {
	if !t.active {
		return us
	}

	base := t.AnchorStart + t.ShiftStart
	span := t.AnchorEnd - t.AnchorStart
	target := (t.AnchorEnd + t.ShiftEnd) - base

	if span == target {
		return us - t.AnchorStart + base
	}

	n := new(big.Int).Mul(big.NewInt(us-t.AnchorStart), big.NewInt(target))
	n.Quo(n, big.NewInt(span))
	return n.Int64() + base
}

func (t Transform) String() string {
	if !t.active {
		return "identity"
	}
	return fmt.Sprintf(
		"%s=%s, %s=%s",
		formatSigned(t.AnchorStart),
		formatSigned(t.ShiftStart),
		formatSigned(t.AnchorEnd),
		formatSigned(t.ShiftEnd),
	)
}

func formatSigned(us int64) string {
	if us < 0 {
		return "-" + timecode.Format(-us)
	}
	return timecode.Format(us)
}
