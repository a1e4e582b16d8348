package cli

import (
	"fmt"
	"strconv"

	"github.com/mgpai22/subshift/internal/video"
	"github.com/spf13/cobra"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [video_file]",
	Short: "List the streams of a video",
	Long: `List every stream of a video with the specifier used by the default
command (a:0, s:1, ...), language, title and disposition flags.

Examples:
  subshift tracks movie.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	cmd.SilenceUsage = true

	ffprobePath, err := binaryPaths().FFprobePath()
	if err != nil {
		return err
	}
	streams, err := video.Streams(cmd.Context(), ffprobePath, videoPath)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", videoPath, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderStreams(streams))
	return nil
}

func renderStreams(streams []video.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Specifier(),
			s.CodecName,
			s.Tags.Language,
			s.Tags.Title,
			yesNo(s.IsDefault()),
			yesNo(s.IsForced()),
		})
	}
	return renderTable(
		[]string{"#", "Track", "Codec", "Language", "Title", "Default", "Forced"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return ""
}
