package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kiesman99/panorama/internal/logging"
	"github.com/kiesman99/panorama/internal/stitcher"
	"github.com/kiesman99/panorama/pkg/tile"
)

// version is overridden at build time with -ldflags "-X".
var version = "1.0.0"

var (
	cfgFile string
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "panorama",
	Short: "Grow images tile by tile with an external outpainting generator",
	Long: `panorama shifts an image toward one or more compass directions, cuts the
exposed area into overlapping 1024x1024 tiles, hands them to an external
generator one at a time and stitches the completed tiles into a larger canvas.

Every artifact is written next to the source image. The generator is expected
to write its result next to each pending tile with "_done" inserted before
the extension (cat_RIGHT_000.png -> cat_RIGHT_000_done.png).

Examples:
  # Shift a 1024x1024 image left and up for a single generation pass
  panorama prepare cat.png -d left -d up

  # Stitch the completed single-shift artifacts
  panorama combine cat.png -d left -d up

  # Extend a large image to both sides, waiting for each completed tile
  panorama run street.png --group left-right --watch

  # Start HTTP server
  panorama serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.panorama.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (json|console)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".panorama" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".panorama")
	}

	// PANORAMA_SERVER_PORT overrides server.port and so on.
	viper.SetEnvPrefix("panorama")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newStitcher returns a stitcher working on the local filesystem
func newStitcher() *stitcher.Stitcher {
	return stitcher.New(tile.NewProcessor(nil), logger)
}

// directionsFlag parses the repeated --direction flag of cmd
func directionsFlag(cmd *cobra.Command) ([]tile.Direction, error) {
	names, err := cmd.Flags().GetStringSlice("direction")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one direction is required (use --direction)")
	}
	return tile.ParseDirections(names)
}
