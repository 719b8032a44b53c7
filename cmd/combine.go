package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var combineCmd = &cobra.Command{
	Use:   "combine IMAGE",
	Short: "Stitch completed direction strips into the final canvas",
	Long: `Grow the source image by every completed "_done" strip, in the order the
directions are given, and write IMAGE_full.png.

Examples:
  # Uses cat_RIGHT_done.png and cat_DOWN_done.png
  panorama combine cat.png -d left -d up

  # Also write a downscaled preview of the result
  panorama combine cat.png -d right --preview`,
	Args: cobra.ExactArgs(1),
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringSliceP("direction", "d", nil, "direction that was extended (left|right|up|down), repeatable")
	combineCmd.Flags().Bool("preview", false, "also write a bounded preview of the result")
}

func runCombine(cmd *cobra.Command, args []string) error {
	dirs, err := directionsFlag(cmd)
	if err != nil {
		return err
	}

	st := newStitcher()
	out, err := st.Combine(cmd.Context(), args[0], dirs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if withPreview, _ := cmd.Flags().GetBool("preview"); withPreview {
		p, err := st.Preview(cmd.Context(), out, viper.GetInt("preview.max-width"), viper.GetInt("preview.max-height"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
