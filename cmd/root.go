package cmd

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/stitcher"
	"github.com/kiesman99/splitsave/pkg/tile"
)

// version is set at build time with -ldflags "-X github.com/kiesman99/splitsave/cmd.version=..."
var version = "dev"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splitsave [flags] INPUT",
	Short: "Save images of any size, splitting them into tiles when needed",
	Long: `splitsave writes an image to a file in the format given by the output
extension (png, png8, jpeg or webp).

If the image is too large for the format, it is split into vertical strips
that are written as numbered files into a new directory next to the output
path, named after the output file and the current time.

Examples:
  # Convert a wide diagram, falling back to tiles when it does not fit
  splitsave diagram.png -o out/diagram.webp

  # Render at 192 dpi and ask before splitting
  splitsave --dpi 192 --confirm diagram.png -o out/diagram.jpg

  # Download the input
  splitsave https://example.com/panorama.jpg -o panorama.webp

  # Join the tiles of an earlier save back into one file
  splitsave join "out/diagram (2024-03-01_04;05;06)" -o diagram.png

  # Capture the primary display
  splitsave capture -o screen.png

  # Start HTTP server
  splitsave serve --port 8080`,
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no args, show help
		if len(args) == 0 {
			return cmd.Help()
		}
		return runConvert(cmd, args[0])
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.splitsave.yaml)")
	rootCmd.PersistentFlags().String("journal", "", "record saves in this SQLite database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every encode attempt")
	rootCmd.PersistentFlags().String("user-agent", "splitsave", "HTTP User-Agent header for downloaded inputs")

	// Output options
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file, its extension selects the format")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output format (png|png8|jpeg|webp), overrides the extension")
	rootCmd.PersistentFlags().IntP("quality", "q", 85, "quality of lossy formats (0-100)")
	rootCmd.PersistentFlags().Int("max-dimension", 0, "largest width or height of one file (0: format limit)")
	rootCmd.PersistentFlags().Int64("max-pixels", 0, "largest pixel count of one file (0: unlimited)")
	rootCmd.Flags().Int("dpi", tile.BaseDPI, "render resolution of the input")

	// Split options
	rootCmd.PersistentFlags().Bool("split", true, "split images that are too large into tiles")
	rootCmd.PersistentFlags().Bool("confirm", false, "ask before splitting an image into tiles")
	rootCmd.PersistentFlags().Bool("keep-partial", false, "keep the tiles of failed attempts")

	// Bind flags to viper
	viper.BindPFlag("journal", rootCmd.PersistentFlags().Lookup("journal"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("encode.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("encode.quality", rootCmd.PersistentFlags().Lookup("quality"))
	viper.BindPFlag("encode.max-dimension", rootCmd.PersistentFlags().Lookup("max-dimension"))
	viper.BindPFlag("encode.max-pixels", rootCmd.PersistentFlags().Lookup("max-pixels"))
	viper.BindPFlag("dpi", rootCmd.Flags().Lookup("dpi"))
	viper.BindPFlag("split.enabled", rootCmd.PersistentFlags().Lookup("split"))
	viper.BindPFlag("split.confirm", rootCmd.PersistentFlags().Lookup("confirm"))
	viper.BindPFlag("split.keep-partial", rootCmd.PersistentFlags().Lookup("keep-partial"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".splitsave" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".splitsave")
	}

	config.BindEnv(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runConvert(cmd *cobra.Command, input string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	var img image.Image
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		img, err = stitcher.New(afero.NewOsFs(), cfg.UserAgent).Download(cmd.Context(), input, nil)
	} else {
		img, err = tile.ReadImage(afero.NewOsFs(), input)
	}
	if err != nil {
		return err
	}
	img = tile.Rescale(img, cfg.DPI)

	return saveImage(cmd, cfg, img, input)
}
