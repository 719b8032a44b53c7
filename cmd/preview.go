package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/panorama/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview IMAGE",
	Short: "Write a downscaled preview of an image",
	Long: `Scale an image down to fit the preview bounds, keeping its aspect ratio,
and write it next to the image with a "_preview" suffix.

Examples:
  panorama preview cat_full.png
  panorama preview cat_full.png --max-width 800 --max-height 400`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Int("max-width", preview.DefaultMaxWidth, "maximum preview width")
	previewCmd.Flags().Int("max-height", preview.DefaultMaxHeight, "maximum preview height")

	viper.BindPFlag("preview.max-width", previewCmd.Flags().Lookup("max-width"))
	viper.BindPFlag("preview.max-height", previewCmd.Flags().Lookup("max-height"))
}

func runPreview(cmd *cobra.Command, args []string) error {
	out, err := newStitcher().Preview(cmd.Context(), args[0], viper.GetInt("preview.max-width"), viper.GetInt("preview.max-height"))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
