package cmd

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/journal"
	"github.com/kiesman99/splitsave/internal/progress"
	"github.com/kiesman99/splitsave/internal/tiler"
)

// saveImage writes img to the configured output and reports the outcome
func saveImage(cmd *cobra.Command, cfg *config.Config, img image.Image, source string) error {
	if cfg.Output == "" {
		return fmt.Errorf("output file is required (use --output)")
	}

	enc, err := cfg.Encoder(cfg.Output)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()

	sink := tiler.NewFileSink(fs, enc)
	sink.MaxDimension = cfg.Encode.MaxDimension
	sink.MaxPixels = cfg.Encode.MaxPixels

	opts := tiler.Options{
		Policy:       cfg.Policy(),
		DisableSplit: !cfg.Split.Enabled,
		KeepPartial:  cfg.Split.KeepPartial,
		Observer:     progress.New(cmd.ErrOrStderr(), filepath.Base(cfg.Output)),
	}
	if cfg.Verbose {
		opts.Logger = log.New(cmd.ErrOrStderr(), "splitsave: ", log.LstdFlags)
	}
	if cfg.Split.Confirm {
		opts.ConfirmSplit = confirmSplit(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := tiler.New(fs, sink, opts).Save(ctx, img, cfg.Output)

	if cfg.Journal != "" {
		if jerr := record(cfg.Journal, journal.NewEntry(source, out, time.Now())); jerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not record save in %s: %v\n", cfg.Journal, jerr)
		}
	}

	if err != nil {
		if out.Directory != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Partial tiles kept in %s\n", out.Directory)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Message())
	return nil
}

// confirmSplit asks on out whether a too large image may be split and reads
// the answer from in
func confirmSplit(in io.Reader, out io.Writer) func(err error, width, height int) bool {
	scanner := bufio.NewScanner(in)
	return func(err error, width, height int) bool {
		fmt.Fprintf(out, "The %dx%d image could not be saved as one file: %v\n", width, height, err)
		fmt.Fprint(out, "Save it as several files instead? [y/N] ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func record(file string, e journal.Entry) error {
	j, err := journal.Open(file)
	if err != nil {
		return err
	}
	defer j.Close()

	_, err = j.Record(context.Background(), e)
	return err
}
