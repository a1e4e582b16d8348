package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Tags      struct {
		Language string `json:"language"`
		Title    string `json:"title"`
	} `json:"tags"`
	Disposition struct {
		Default int `json:"default"`
		Forced  int `json:"forced"`
	} `json:"disposition"`

	// position among streams of the same type, as used by ffmpeg
	// specifiers such as a:1
	TypeIndex int `json:"-"`
}

func (s Stream) IsDefault() bool {
	return s.Disposition.Default != 0
}

func (s Stream) IsForced() bool {
	return s.Disposition.Forced != 0
}

// Specifier returns the ffmpeg stream specifier, e.g. "a:1".
func (s Stream) Specifier() string {
	return fmt.Sprintf("%s:%d", typeLetter(s.CodecType), s.TypeIndex)
}

type probeOutput struct {
	Streams []Stream `json:"streams"`
}

// Streams runs ffprobe against path and returns its streams in container
// order.
func Streams(ctx context.Context, ffprobePath, path string) ([]Stream, error) {
	binary := strings.TrimSpace(ffprobePath)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ffprobe streams: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-hide_banner",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, processError(cmd, stderr, err)
	}

	return parseStreams(output)
}

func parseStreams(output []byte) ([]Stream, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	counts := map[string]int{}
	for i := range probe.Streams {
		kind := probe.Streams[i].CodecType
		probe.Streams[i].TypeIndex = counts[kind]
		counts[kind]++
	}
	return probe.Streams, nil
}

// CountByType returns how many streams of codecType ("audio", "subtitle")
// the container holds.
func CountByType(streams []Stream, codecType string) int {
	n := 0
	for _, s := range streams {
		if strings.EqualFold(s.CodecType, codecType) {
			n++
		}
	}
	return n
}

func typeLetter(codecType string) string {
	switch strings.ToLower(codecType) {
	case "video":
		return "v"
	case "audio":
		return "a"
	case "subtitle":
		return "s"
	case "data":
		return "d"
	case "attachment":
		return "t"
	default:
		return "?"
	}
}

func processError(cmd *exec.Cmd, stderr *tailBuffer, err error) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return &ExternalProcessError{
		Command:  cmd.String(),
		ExitCode: exitCode,
		Stderr:   stderr.String(),
		Err:      err,
	}
}
