package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show database statistics",
		Run:   runInfo,
	}

	RootCmd.AddCommand(cmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("info", err)
	}

	output(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "database  %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		fmt.Fprintf(w, "profiles  %d", stats.Profiles)
		if stats.ActiveProfile != "" {
			fmt.Fprintf(w, " (active %s)", shortID(stats.ActiveProfile))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "records   %s\n", humanize.Comma(int64(stats.TotalRecords)))
		for _, c := range stats.Categories {
			fmt.Fprintf(w, "  %-9s %d\n", c.Category, c.Count)
		}
	})
}
