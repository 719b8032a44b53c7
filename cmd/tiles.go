package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiesman99/panorama/internal/stitcher"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles IMAGE",
	Short: "Write every pending tile of a full panorama at once",
	Long: `Shift and slice the image for both directions of a group and write all
pending tiles without waiting for the generator. Only the first tile of each
direction carries generated overlap in a real run; the rest are meant for
inspection.

Examples:
  panorama tiles street.png --group left-right`,
	Args: cobra.ExactArgs(1),
	RunE: runTiles,
}

func init() {
	rootCmd.AddCommand(tilesCmd)

	tilesCmd.Flags().StringSliceP("group", "g", nil, "direction group (left-right|up-down)")
}

func runTiles(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("group")
	group, err := stitcher.SelectGroup(names)
	if err != nil {
		return err
	}

	st := newStitcher()
	parts, err := st.PrepareParts(cmd.Context(), args[0], group.Directions())
	if err != nil {
		return err
	}

	for _, d := range group.Directions() {
		for _, p := range parts[d] {
			if err := st.WritePart(p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Path)
		}
	}
	return nil
}
