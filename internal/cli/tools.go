package cli

import (
	"context"

	"github.com/mgpai22/subshift/internal/ffmpeg"
	"github.com/mgpai22/subshift/internal/video"
)

func binaryPaths() ffmpeg.BinaryPaths {
	return ffmpeg.BinaryPaths{
		FFmpeg:  cfg.Tools.FFmpeg,
		FFprobe: cfg.Tools.FFprobe,
	}
}

// lazyFrameProbe locates ffprobe only when frames are actually needed, so
// time-only conversions work without ffmpeg installed.
type lazyFrameProbe struct {
	paths ffmpeg.BinaryPaths
}

func (l lazyFrameProbe) OpenFrames(ctx context.Context, videoPath string) (video.FrameStream, error) {
	ffprobePath, err := l.paths.FFprobePath()
	if err != nil {
		return nil, err
	}
	logger.Debugw("Using ffprobe", "path", ffprobePath)
	return video.NewFrameProbe(ffprobePath).OpenFrames(ctx, videoPath)
}
