// Package timebase maps video frame ordinals to presentation timestamps.
//
// An Index is built once per video from a stream of per-frame timestamps
// (microseconds, presentation order) and is read-only afterwards. It answers
// ordinal lookups, exact timestamp lookups and "first frame at or after"
// searches used to snap subtitle cue boundaries to frames.
package timebase

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ProgressInterval is the number of frames between progress callbacks.
const ProgressInterval = 10000

// PastEnd is the frame ordinal written for a time beyond the last indexed
// frame. It keeps such cues in the output, ordered last.
const PastEnd int64 = 999999999

// Kind tells how a cue boundary value is interpreted.
type Kind int

const (
	KindTime  Kind = iota // microseconds
	KindFrame             // frame ordinal
)

func (k Kind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindFrame:
		return "frame"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Frame struct {
	Ordinal   int
	Timestamp int64
}

// FrameSource produces frame timestamps in presentation order. Next returns
// io.EOF once the sequence is exhausted.
type FrameSource interface {
	Next() (int64, error)
}

// Progress observes index construction; frames is the count seen so far.
type Progress func(frames int)

// LookupError reports a frame ordinal outside the index.
type LookupError struct {
	Ordinal int64
	Frames  int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf(
		"frame %d out of range: index has %d frames",
		e.Ordinal,
		e.Frames,
	)
}

type Index struct {
	frames []Frame
	byTime map[int64]Frame
}

// Build consumes src to the end, assigning ordinals 0..N-1 in order.
// Timestamps are trusted to be non-decreasing and are not re-sorted.
func Build(src FrameSource, progress Progress) (*Index, error) {
	idx := &Index{byTime: make(map[int64]Frame)}

	for {
		ts, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(
				"read frame %d: %w",
				len(idx.frames),
				err,
			)
		}

		frame := Frame{Ordinal: len(idx.frames), Timestamp: ts}
		idx.frames = append(idx.frames, frame)
		if _, ok := idx.byTime[ts]; !ok {
			idx.byTime[ts] = frame
		}

		if progress != nil && len(idx.frames)%ProgressInterval == 0 {
			progress(len(idx.frames))
		}
	}

	return idx, nil
}

func (idx *Index) Len() int {
	return len(idx.frames)
}

// Frames returns a copy of the indexed frames.
func (idx *Index) Frames() []Frame {
	return append([]Frame(nil), idx.frames...)
}

func (idx *Index) FrameByOrdinal(n int) (Frame, bool) {
	if n < 0 || n >= len(idx.frames) {
		return Frame{}, false
	}
	return idx.frames[n], true
}

// FrameAt returns the first frame carrying exactly ts.
func (idx *Index) FrameAt(ts int64) (Frame, bool) {
	f, ok := idx.byTime[ts]
	return f, ok
}

// LowestFrameAtOrAfter returns the earliest frame whose timestamp is >= ts.
// Cue boundaries round toward later display, never to the nearest frame.
func (idx *Index) LowestFrameAtOrAfter(ts int64) (Frame, bool) {
	i := sort.Search(len(idx.frames), func(i int) bool {
		return idx.frames[i].Timestamp >= ts
	})
	if i == len(idx.frames) {
		return Frame{}, false
	}
	return idx.frames[i], true
}

// Resolve converts a boundary value of kind from into kind to.
// Frame to time fails with *LookupError for unknown ordinals; time to frame
// yields PastEnd when the time is beyond the last frame.
func (idx *Index) Resolve(value int64, from, to Kind) (int64, error) {
	if from == to {
		return value, nil
	}

	switch {
	case from == KindFrame && to == KindTime:
		if value < 0 || value >= int64(len(idx.frames)) {
			return 0, &LookupError{Ordinal: value, Frames: len(idx.frames)}
		}
		return idx.frames[value].Timestamp, nil
	case from == KindTime && to == KindFrame:
		f, ok := idx.LowestFrameAtOrAfter(value)
		if !ok {
			return PastEnd, nil
		}
		return int64(f.Ordinal), nil
	default:
		return 0, fmt.Errorf("cannot resolve %s to %s", from, to)
	}
}

// Duration is the timestamp of the last frame, or 0 for an empty index.
func (idx *Index) Duration() int64 {
	if len(idx.frames) == 0 {
		return 0
	}
	return idx.frames[len(idx.frames)-1].Timestamp
}

// SliceSource serves timestamps from memory.
type SliceSource struct {
	timestamps []int64
	pos        int
}

func NewSliceSource(timestamps []int64) *SliceSource {
	return &SliceSource{timestamps: timestamps}
}

func (s *SliceSource) Next() (int64, error) {
	if s.pos >= len(s.timestamps) {
		return 0, io.EOF
	}
	ts := s.timestamps[s.pos]
	s.pos++
	return ts, nil
}
