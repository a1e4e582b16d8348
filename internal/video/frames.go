package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mgpai22/subshift/internal/segment"
	"github.com/mgpai22/subshift/internal/timebase"
)

const (
	frameFooter       = "[/FRAME]"
	frameTimestampKey = "best_effort_timestamp_time="
	stderrTail        = 4096
)

// FrameOpener starts a per-frame timestamp stream for a video.
type FrameOpener interface {
	OpenFrames(ctx context.Context, videoPath string) (FrameStream, error)
}

// FrameStream is a timebase.FrameSource backed by a running process.
// Close must be called; it stops the process if the stream was not drained.
type FrameStream interface {
	timebase.FrameSource
	io.Closer
}

// FrameProbe lists frame timestamps of the first video stream with ffprobe.
type FrameProbe struct {
	FFprobe string
}

func NewFrameProbe(ffprobePath string) *FrameProbe {
	return &FrameProbe{FFprobe: ffprobePath}
}

func (p *FrameProbe) OpenFrames(ctx context.Context, videoPath string) (FrameStream, error) {
	binary := strings.TrimSpace(p.FFprobe)
	if binary == "" {
		binary = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "frame=best_effort_timestamp_time",
		"-of", "default",
		"--", videoPath,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffprobe stdout: %w", err)
	}
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, &ExternalProcessError{
			Command:  cmd.String(),
			ExitCode: -1,
			Err:      err,
		}
	}

	return &probeStream{
		cmd:      cmd,
		stdout:   stdout,
		stderr:   stderr,
		segments: segment.NewReader(stdout, segment.Footer(frameFooter)),
	}, nil
}

type probeStream struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   *tailBuffer
	segments *segment.Reader
	last     int64
	count    int
	waited   bool
	waitErr  error
}

// Next returns the next frame timestamp in microseconds. The process exit
// status is checked once its output ends, so a failing ffprobe surfaces as
// an error instead of a short index.
func (s *probeStream) Next() (int64, error) {
	for {
		lines, err := s.segments.Next()
		if errors.Is(err, io.EOF) {
			if err := s.wait(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("read ffprobe output: %w", err)
		}

		value, ok := frameTimestamp(lines)
		if !ok {
			continue
		}

		s.count++
		if value == "N/A" {
			// keep ordinals dense; the frame shows no earlier than its predecessor
			return s.last, nil
		}
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf(
				"frame %d: invalid timestamp %q: %w",
				s.count-1,
				value,
				err,
			)
		}
		s.last = int64(math.Round(seconds * 1e6))
		return s.last, nil
	}
}

func (s *probeStream) Close() error {
	if s.waited {
		return s.waitErr
	}
	// drained or not, stop producing and reap the process
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.waited = true
	return nil
}

func (s *probeStream) wait() error {
	if s.waited {
		return s.waitErr
	}
	s.waited = true
	if err := s.cmd.Wait(); err != nil {
		s.waitErr = processError(s.cmd, s.stderr, err)
	}
	return s.waitErr
}

func frameTimestamp(lines []string) (string, bool) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, frameTimestampKey); ok {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
