package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mgpai22/subshift/internal/convert"
	"github.com/mgpai22/subshift/internal/retime"
	"github.com/mgpai22/subshift/internal/subtitle"
	"github.com/mgpai22/subshift/internal/video"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_or_video]...",
	Short: "Retime subtitles and convert between SRT and SUB",
	Long: `Convert subtitle files between SubRip (.srt) and MicroDVD (.sub),
optionally shifting or stretching their timing.

A delay is time=shift. One delay shifts every cue by the same amount; two
delays stretch timing linearly so each anchor time moves by its shift.

Frame-coded input or output needs the video's frame timestamps. The video is
taken from --video or found next to the subtitle by name. Passing a video
instead of a subtitle converts every .srt and .sub file named after it.

Without --output each file is converted to the other format next to the
input.

Examples:
  subshift convert movie.srt -o sub
  subshift convert movie.sub -o movie.fixed.srt -d 0=1.5
  subshift convert movie.srt -o out.srt -d 1:00=0.5 -d 1:30:00=2.1
  subshift convert ep1.srt ep2.srt -o sub --video ep.mkv
  subshift convert movie.mkv -o srt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringArrayP("output", "o", nil, "Output path or format (srt, sub); repeat once per input")
	convertCmd.Flags().
		StringArrayP("delay", "d", nil, "Timing adjustment time=shift, e.g. 1:00=-0.5 (at most twice)")
	convertCmd.Flags().
		String("video", "", "Video providing the frame timebase")
	convertCmd.Flags().
		Bool("strict", false, "Fail on malformed SUB lines instead of skipping them")
	convertCmd.Flags().
		String("charset", "", "Input charset when the file has no byte-order mark (default utf-8)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	outputs, _ := cmd.Flags().GetStringArray("output")
	delays, _ := cmd.Flags().GetStringArray("delay")
	videoPath, _ := cmd.Flags().GetString("video")
	strict, _ := cmd.Flags().GetBool("strict")
	charset, _ := cmd.Flags().GetString("charset")

	transform, err := retime.FromSpecs(delays)
	if err != nil {
		return err
	}

	if charset == "" {
		charset = cfg.Convert.Charset
	}
	if !subtitle.ValidCharset(charset) {
		return fmt.Errorf("unknown charset %q", charset)
	}

	inputs, companion, err := expandInputs(args)
	if err != nil {
		return err
	}
	if videoPath == "" {
		videoPath = companion
	}
	if videoPath != "" {
		if _, err := os.Stat(videoPath); err != nil {
			return fmt.Errorf("video file not found: %s", videoPath)
		}
	}

	cmd.SilenceUsage = true

	logger.Infow("Starting conversion",
		"inputs", len(inputs),
		"video", videoPath,
		"transform", transform.String(),
	)

	pipeline := &convert.Pipeline{
		Frames:    lazyFrameProbe{paths: binaryPaths()},
		Video:     videoPath,
		Transform: transform,
		ReadOptions: subtitle.ReadOptions{
			Charset: charset,
			Strict:  strict || cfg.Convert.StrictSUB,
		},
		Logger: logger.Sugar(),
	}

	outcomes := pipeline.Convert(cmd.Context(), inputs, outputs)
	fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes))

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(outcomes))
	}
	return nil
}

// expandInputs replaces video arguments with the subtitles named after
// them. A single video argument also becomes the timebase source.
func expandInputs(args []string) ([]string, string, error) {
	var (
		inputs []string
		videos []string
	)
	for _, arg := range args {
		if !video.IsVideoFile(arg) {
			inputs = append(inputs, arg)
			continue
		}
		subs, err := convert.CompanionSubtitles(arg)
		if err != nil {
			return nil, "", err
		}
		if len(subs) == 0 {
			return nil, "", fmt.Errorf("no .srt or .sub files found for %s", arg)
		}
		videos = append(videos, arg)
		inputs = append(inputs, subs...)
	}

	companion := ""
	if len(videos) == 1 {
		companion = videos[0]
	}
	return inputs, companion, nil
}

func renderOutcomes(outcomes []convert.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		switch {
		case o.Err != nil:
			status = o.Err.Error()
		case o.PastEnd > 0:
			status = fmt.Sprintf("ok, %d past end of video", o.PastEnd)
		}
		rows = append(rows, []string{
			o.Input,
			o.Output,
			strconv.Itoa(o.Entries),
			status,
		})
	}
	return renderTable(
		[]string{"Input", "Output", "Entries", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}
