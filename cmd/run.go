package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/panorama/internal/stitcher"
	"github.com/kiesman99/panorama/internal/watch"
	"github.com/kiesman99/panorama/pkg/tile"
)

var runCmd = &cobra.Command{
	Use:   "run IMAGE",
	Short: "Extend an image to both sides of a direction group, one tile at a time",
	Long: `Drive a full panorama: write the first pending tile, wait until the
generator has written its "_done" counterpart, carry the overlap into the
next tile and repeat. When both directions are complete the final canvas is
written to IMAGE_full.png.

Without --watch, press Enter once each completed tile has been saved.

Examples:
  # Wait for completed tiles on the filesystem
  panorama run street.png --group left-right --watch

  # Confirm each completed tile manually
  panorama run tower.png --group up-down`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceP("group", "g", nil, "direction group (left-right|up-down)")
	runCmd.Flags().BoolP("watch", "w", false, "wait for completed tiles on the filesystem instead of stdin")
	runCmd.Flags().Duration("settle", watch.DefaultSettle, "how long a completed tile must stay unchanged")
	runCmd.Flags().Bool("preview", false, "also write a bounded preview of the result")

	viper.BindPFlag("watch.settle", runCmd.Flags().Lookup("settle"))
}

func runRun(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("group")
	group, err := stitcher.SelectGroup(names)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := newStitcher()
	ss, err := st.NewSession(ctx, args[0], group)
	if err != nil {
		return err
	}

	var wait func(ctx context.Context, path string) error
	if useWatch, _ := cmd.Flags().GetBool("watch"); useWatch {
		w := watch.New(viper.GetDuration("watch.settle"), logger)
		wait = w.WaitFor
	} else {
		in := bufio.NewReader(cmd.InOrStdin())
		wait = func(ctx context.Context, path string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Press Enter once %s has been written\n", path)
			if _, err := in.ReadString('\n'); err != nil {
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("input closed while waiting for %s", path)
				}
				return err
			}
			return nil
		}
	}

	out := cmd.OutOrStdout()
	if cfg, err := st.Processor().DecodeConfig(args[0]); err == nil {
		fmt.Fprintf(out, "Extending %s (%dx%d) toward %s\n", args[0], cfg.Width, cfg.Height, group)
	}

	status, err := ss.TileReady(ctx)
	if err != nil {
		return err
	}

	for status.State != stitcher.AllDirectionsComplete {
		done := tile.DonePath(status.Pending)
		fmt.Fprintf(out, "%s tile %d/%d: %s\n", status.Direction, status.Index+1, status.Parts[status.Direction], status.Pending)

		if err := wait(ctx, done); err != nil {
			return err
		}

		next, err := ss.TileReady(ctx)
		if errors.Is(err, stitcher.ErrDoneMissing) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s does not exist yet\n", done)
			// Give the generator a moment before asking again.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if err != nil {
			return err
		}
		status = next
	}

	fmt.Fprintln(out, status.Output)

	if withPreview, _ := cmd.Flags().GetBool("preview"); withPreview {
		p, err := st.Preview(ctx, status.Output, viper.GetInt("preview.max-width"), viper.GetInt("preview.max-height"))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, p)
	}
	return nil
}
