package cmd

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/splitsave/internal/config"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the screen and save it",
	Long: `Capture one display, or the union of all displays, and save the
screenshot the same way as an input file. A capture spanning several
monitors easily exceeds the limits of formats like WebP and is then
split into tiles.

Examples:
  # Capture the primary display
  splitsave capture -o screen.png

  # Capture every display into one image
  splitsave capture --all -o desktop.webp`,
	Args: cobra.NoArgs,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().IntP("display", "d", 0, "index of the display to capture")
	captureCmd.Flags().Bool("all", false, "capture the bounding box of all displays")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	display, _ := cmd.Flags().GetInt("display")
	all, _ := cmd.Flags().GetBool("all")

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return fmt.Errorf("no active display found")
	}

	var (
		bounds image.Rectangle
		source string
	)
	if all {
		for i := 0; i < n; i++ {
			bounds = bounds.Union(screenshot.GetDisplayBounds(i))
		}
		source = "displays:all"
	} else {
		if display < 0 || display >= n {
			return fmt.Errorf("display %d does not exist, %d active display(s)", display, n)
		}
		bounds = screenshot.GetDisplayBounds(display)
		source = fmt.Sprintf("display:%d", display)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return fmt.Errorf("capturing %v: %w", bounds, err)
	}

	return saveImage(cmd, cfg, img, source)
}
