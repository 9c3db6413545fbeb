package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/stitcher"
)

var joinCmd = &cobra.Command{
	Use:   "join DIRECTORY",
	Short: "Join the tiles of a split save into one image",
	Long: `Join decodes the numbered tiles in a tile directory, places them side
by side and saves the result like any other input. If the joined image is
still too large for the output format, it is split again.

Examples:
  # Convert split WebP tiles into a single PNG
  splitsave join "out/diagram (2024-03-01_04;05;06)" -o diagram.png`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	res, err := stitcher.New(afero.NewOsFs(), cfg.UserAgent).Join(cmd.Context(), args[0])
	if err != nil {
		if tileErr, ok := err.(*stitcher.TileError); ok {
			for _, ft := range tileErr.FailedTiles {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", ft.Path, ft.Error)
			}
		}
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Joined %d tiles into %dx%d pixels\n", len(res.Files), res.Width, res.Height)

	return saveImage(cmd, cfg, res.Image, "join:"+args[0])
}
