package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded saves",
	Long: `List the saves recorded in the journal, newest first.

Examples:
  splitsave history --journal ~/.splitsave.db -n 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Journal == "" {
		return fmt.Errorf("no journal configured (use --journal)")
	}

	limit, _ := cmd.Flags().GetInt("limit")

	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tSIZE\tKIND\tFILES\tTRIED\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%d\t%s\t%s\n",
			e.Time.Format(time.DateTime), e.Source, e.Width, e.Height, e.Kind, e.Files, e.Tried, e.Path)
		if e.Kind == "failed" {
			fmt.Fprintf(w, "\t%s\n", e.Message)
		}
	}
	return w.Flush()
}
