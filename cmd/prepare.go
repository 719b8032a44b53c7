package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare IMAGE",
	Short: "Write single-shift artifacts for an image that fits in one tile",
	Long: `Shift a 1024x1024 image toward each requested direction and write one
artifact per direction, named after the side that was exposed.

Examples:
  # Writes cat_RIGHT.png and cat_DOWN.png
  panorama prepare cat.png -d left -d up`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringSliceP("direction", "d", nil, "direction to shift toward (left|right|up|down), repeatable")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	dirs, err := directionsFlag(cmd)
	if err != nil {
		return err
	}

	paths, err := newStitcher().Prepare(cmd.Context(), args[0], dirs)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
