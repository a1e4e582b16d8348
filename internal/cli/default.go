package cli

import (
	"fmt"

	"github.com/mgpai22/subshift/internal/video"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:   "default [video_file]",
	Short: "Choose the default audio and subtitle tracks",
	Long: `Copy a video with the selected audio and subtitle tracks marked as
default and every other track of that type cleared. Streams are copied
without re-encoding. Track numbers count streams of one type, as listed by
the tracks command.

Examples:
  subshift default movie.mkv -o movie.fixed.mkv --audio 1
  subshift default movie.mkv -o out.mkv --audio 0 --subtitle 2`,
	Args: cobra.ExactArgs(1),
	RunE: runDefault,
}

func init() {
	rootCmd.AddCommand(defaultCmd)

	defaultCmd.Flags().StringP("output", "o", "", "Output video path")
	defaultCmd.Flags().Int("audio", 0, "Audio track to mark default (a:N)")
	defaultCmd.Flags().Int("subtitle", 0, "Subtitle track to mark default (s:N)")
	_ = defaultCmd.MarkFlagRequired("output")
}

func runDefault(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	var sel video.DefaultSelection
	if cmd.Flags().Changed("audio") {
		n, _ := cmd.Flags().GetInt("audio")
		sel.Audio = &n
	}
	if cmd.Flags().Changed("subtitle") {
		n, _ := cmd.Flags().GetInt("subtitle")
		sel.Subtitle = &n
	}
	if sel.IsEmpty() {
		return fmt.Errorf("no default track selected: use --audio and/or --subtitle")
	}
	cmd.SilenceUsage = true

	paths := binaryPaths()
	ffprobePath, err := paths.FFprobePath()
	if err != nil {
		return err
	}
	ffmpegPath, err := paths.FFmpegPath()
	if err != nil {
		return err
	}

	streams, err := video.Streams(cmd.Context(), ffprobePath, videoPath)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", videoPath, err)
	}
	if err := sel.Validate(streams); err != nil {
		return err
	}

	logger.Infow("Setting default tracks",
		"video", videoPath,
		"output", outputPath,
	)

	processor := video.NewProcessor(ffmpegPath)
	if err := processor.SetDefaults(cmd.Context(), videoPath, outputPath, sel); err != nil {
		return fmt.Errorf("failed to set default tracks: %w", err)
	}

	logger.Infow("Default tracks set", "output", outputPath)
	return nil
}
