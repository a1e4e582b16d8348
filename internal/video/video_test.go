package video

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mgpai22/subshift/internal/timebase"
)

const sampleStreams = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "disposition": {"default": 1}},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "eng"}, "disposition": {"default": 1}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "tags": {"language": "ces", "title": "Dabing"}},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "ces"}, "disposition": {"forced": 1}}
  ]
}`

func intPtr(v int) *int {
	return &v
}

func TestParseStreams(t *testing.T) {
	streams, err := parseStreams([]byte(sampleStreams))
	if err != nil {
		t.Fatalf("parseStreams returned error: %v", err)
	}
	if len(streams) != 4 {
		t.Fatalf("expected 4 streams, got %d", len(streams))
	}

	if got := streams[2].Specifier(); got != "a:1" {
		t.Errorf("streams[2].Specifier() = %q, want a:1", got)
	}
	if got := streams[3].Specifier(); got != "s:0" {
		t.Errorf("streams[3].Specifier() = %q, want s:0", got)
	}
	if streams[2].Tags.Title != "Dabing" || streams[2].Tags.Language != "ces" {
		t.Errorf("unexpected tags: %+v", streams[2].Tags)
	}
	if !streams[1].IsDefault() || streams[2].IsDefault() || !streams[3].IsForced() {
		t.Error("dispositions not decoded")
	}
	if CountByType(streams, "audio") != 2 {
		t.Errorf("CountByType(audio) = %d", CountByType(streams, "audio"))
	}
}

func TestDefaultSelectionValidate(t *testing.T) {
	streams, err := parseStreams([]byte(sampleStreams))
	if err != nil {
		t.Fatalf("parseStreams returned error: %v", err)
	}

	tests := []struct {
		name    string
		sel     DefaultSelection
		wantErr bool
	}{
		{"empty", DefaultSelection{}, true},
		{"audio ok", DefaultSelection{Audio: intPtr(1)}, false},
		{"audio out of range", DefaultSelection{Audio: intPtr(2)}, true},
		{"subtitle ok", DefaultSelection{Subtitle: intPtr(0)}, false},
		{"negative", DefaultSelection{Subtitle: intPtr(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate(streams)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDispositionArgs(t *testing.T) {
	p := NewProcessor("ffmpeg")
	args := p.dispositionArgs("in.mkv", "out.mkv", DefaultSelection{Audio: intPtr(1)})
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i in.mkv",
		"-map 0",
		"-c copy",
		"-disposition:a 0",
		"-disposition:a:1 default",
		"out.mkv",
		"-y",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if strings.Contains(joined, "disposition:s") {
		t.Errorf("subtitle dispositions should be untouched: %q", joined)
	}
	if strings.Index(joined, "-disposition:a 0") > strings.Index(joined, "-disposition:a:1") {
		t.Errorf("clearing must precede selection: %q", joined)
	}
}

func TestSetDefaultsRejectsInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	err := NewProcessor("").SetDefaults(context.Background(), path, path, DefaultSelection{Audio: intPtr(0)})
	if err == nil {
		t.Fatal("expected error when output equals input")
	}
}

func TestIsVideoFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.mkv":  true,
		"b.MP4":  true,
		"c.srt":  false,
		"d.sub":  false,
		"e.m2ts": true,
	} {
		if got := IsVideoFile(path); got != want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", path, got, want)
		}
	}
}

// fakeProbe writes a shell script standing in for ffprobe.
func fakeProbe(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake ffprobe: %v", err)
	}
	return path
}

func TestFrameProbeStreamsTimestamps(t *testing.T) {
	probe := NewFrameProbe(fakeProbe(t, `cat <<'EOF'
[FRAME]
best_effort_timestamp_time=0.000000
[/FRAME]
[FRAME]
best_effort_timestamp_time=0.040000
[/FRAME]
[FRAME]
best_effort_timestamp_time=N/A
[/FRAME]
[FRAME]
best_effort_timestamp_time=0.120000
[/FRAME]
EOF`))

	stream, err := probe.OpenFrames(context.Background(), "movie.mkv")
	if err != nil {
		t.Fatalf("OpenFrames returned error: %v", err)
	}
	defer stream.Close()

	idx, err := timebase.Build(stream, nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	got := idx.Frames()
	want := []int64{0, 40_000, 40_000, 120_000}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i, f := range got {
		if f.Ordinal != i || f.Timestamp != want[i] {
			t.Errorf("frame %d = %+v, want timestamp %d", i, f, want[i])
		}
	}
	if err := stream.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestFrameProbeFailureIsExternalProcessError(t *testing.T) {
	probe := NewFrameProbe(fakeProbe(t, `echo "movie.mkv: No such file" >&2
exit 1`))

	stream, err := probe.OpenFrames(context.Background(), "movie.mkv")
	if err != nil {
		t.Fatalf("OpenFrames returned error: %v", err)
	}
	defer stream.Close()

	_, err = stream.Next()
	var pe *ExternalProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("Next error = %v, want *ExternalProcessError", err)
	}
	if pe.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", pe.ExitCode)
	}
	if !strings.Contains(pe.Command, "best_effort_timestamp_time") || !strings.Contains(pe.Command, "movie.mkv") {
		t.Errorf("Command = %q, want full command line", pe.Command)
	}
	if !strings.Contains(pe.Stderr, "No such file") {
		t.Errorf("Stderr = %q", pe.Stderr)
	}
	if errors.Is(err, io.EOF) {
		t.Error("failure must not look like a clean end of stream")
	}
}

func TestFrameProbeCloseBeforeDrain(t *testing.T) {
	probe := NewFrameProbe(fakeProbe(t, `while true; do
printf '[FRAME]\nbest_effort_timestamp_time=0.0\n[/FRAME]\n'
done`))

	stream, err := probe.OpenFrames(context.Background(), "movie.mkv")
	if err != nil {
		t.Fatalf("OpenFrames returned error: %v", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
