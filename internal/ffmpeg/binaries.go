package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	FFmpegEnv  = "SUBSHIFT_FFMPEG_PATH"
	FFprobeEnv = "SUBSHIFT_FFPROBE_PATH"
)

// ErrNotFound is returned when a binary is neither configured nor on PATH.
var ErrNotFound = errors.New("binary not found")

// BinaryPaths holds configured locations; empty fields fall back to the
// environment and then PATH.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

func (p BinaryPaths) FFmpegPath() (string, error) {
	return locate("ffmpeg", FFmpegEnv, p.FFmpeg)
}

func (p BinaryPaths) FFprobePath() (string, error) {
	return locate("ffprobe", FFprobeEnv, p.FFprobe)
}

// environment beats configuration so a single run can be redirected
func locate(name, envVar, configured string) (string, error) {
	if path := strings.TrimSpace(os.Getenv(envVar)); path != "" {
		return checkExecutable(path, envVar)
	}
	if path := strings.TrimSpace(configured); path != "" {
		return checkExecutable(path, "config")
	}

	found, err := exec.LookPath(name + executableSuffix())
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w: install it, set %s, or configure tools.%s",
			name,
			ErrNotFound,
			envVar,
			name,
		)
	}
	return found, nil
}

func checkExecutable(path, source string) (string, error) {
	if !fileExists(path) {
		return "", fmt.Errorf("%s (from %s): %w", path, source, ErrNotFound)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
