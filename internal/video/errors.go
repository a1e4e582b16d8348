package video

import (
	"fmt"
	"strings"
)

// ExternalProcessError reports a collaborator process (ffmpeg, ffprobe) that
// failed. Command is the exact command line, for reproducing by hand.
type ExternalProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalProcessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "command failed (exit %d): %s", e.ExitCode, e.Command)
	if e.Stderr != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Stderr)
	}
	return sb.String()
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}
