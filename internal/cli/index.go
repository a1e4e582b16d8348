package cli

import (
	"fmt"
	"strconv"

	"github.com/mgpai22/subshift/internal/convert"
	"github.com/mgpai22/subshift/internal/timebase"
	"github.com/mgpai22/subshift/internal/timecode"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [video_file]",
	Short: "Read the frame timestamps of a video",
	Long: `Read every frame timestamp of the first video stream and report the
frame count and duration. Useful to check that a video can serve as the
timebase for SUB conversions.

Examples:
  subshift index movie.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	cmd.SilenceUsage = true

	pipeline := &convert.Pipeline{
		Frames: lazyFrameProbe{paths: binaryPaths()},
		Logger: logger.Sugar(),
	}
	idx, err := pipeline.BuildIndex(cmd.Context(), videoPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderIndex(videoPath, idx))
	return nil
}

func renderIndex(videoPath string, idx *timebase.Index) string {
	rate := "-"
	if n := idx.Len(); n > 1 && idx.Duration() > 0 {
		fps := float64(n-1) * float64(timecode.Second) / float64(idx.Duration())
		rate = strconv.FormatFloat(fps, 'f', 3, 64)
	}
	return renderTable(
		[]string{"Video", "Frames", "Duration", "Avg FPS"},
		[][]string{{
			videoPath,
			strconv.Itoa(idx.Len()),
			timecode.Format(idx.Duration()),
			rate,
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	)
}
