package cli

import (
	"context"

	"github.com/mgpai22/subshift/internal/config"
	"github.com/mgpai22/subshift/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subshift",
	Short: "Retime subtitles and convert between SRT and frame-based SUB",
	Long: `Subshift shifts and stretches subtitle timing and converts between
time-coded SubRip (.srt) and frame-coded MicroDVD (.sub) files.

Frame-coded conversions read the exact frame timestamps of the video with
ffprobe, so variable frame rate sources convert without drift.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logger = logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			Verbose: verbose,
		}).WithRun()
		if exists {
			logger.Debugw("Loaded config", "path", path)
		}
		return nil
	},
}

func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI; cancelling ctx stops running ffmpeg and
// ffprobe processes.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/subshift/config.toml)")
}
