package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultSelection picks the audio and subtitle tracks a player should
// start with. Indexes count streams of that type (a:N, s:N); nil leaves the
// existing dispositions of that type untouched.
type DefaultSelection struct {
	Audio    *int
	Subtitle *int
}

func (s DefaultSelection) IsEmpty() bool {
	return s.Audio == nil && s.Subtitle == nil
}

// Validate checks the selection against the streams of the input.
func (s DefaultSelection) Validate(streams []Stream) error {
	if s.IsEmpty() {
		return fmt.Errorf("no default track selected: use --audio and/or --subtitle")
	}
	for _, pick := range []struct {
		index     *int
		codecType string
	}{
		{s.Audio, "audio"},
		{s.Subtitle, "subtitle"},
	} {
		if pick.index == nil {
			continue
		}
		count := CountByType(streams, pick.codecType)
		if *pick.index < 0 || *pick.index >= count {
			return fmt.Errorf(
				"%s track %d out of range: input has %d %s tracks",
				pick.codecType,
				*pick.index,
				count,
				pick.codecType,
			)
		}
	}
	return nil
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath string
}

func NewProcessor(ffmpegPath string) *DefaultProcessor {
	return &DefaultProcessor{ffmpegPath: ffmpegPath}
}

// SetDefaults remuxes videoPath into outputPath with every stream copied
// and the selected tracks marked default. The output appears only once
// ffmpeg has succeeded.
func (p *DefaultProcessor) SetDefaults(
	ctx context.Context,
	videoPath, outputPath string,
	sel DefaultSelection,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if sameFile(videoPath, outputPath) {
		return fmt.Errorf("output %s would overwrite its input", outputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := filepath.Join(
		outputDir,
		".tmp-"+filepath.Base(outputPath),
	)
	defer func() { _ = os.Remove(tmpPath) }()

	args := p.dispositionArgs(videoPath, tmpPath, sel)
	binary := p.ffmpegPath
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return processError(cmd, stderr, err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func (p *DefaultProcessor) dispositionArgs(
	videoPath, outputPath string,
	sel DefaultSelection,
) []string {
	kwargs := ffmpeg.KwArgs{
		"map": "0", // every stream
		"c":   "copy",
	}
	if sel.Audio != nil {
		kwargs["disposition:a"] = "0"
		kwargs[fmt.Sprintf("disposition:a:%d", *sel.Audio)] = "default"
	}
	if sel.Subtitle != nil {
		kwargs["disposition:s"] = "0"
		kwargs[fmt.Sprintf("disposition:s:%d", *sel.Subtitle)] = "default"
	}

	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
		".ts":   true,
		".m2ts": true,
	}
	return videoExts[ext]
}
