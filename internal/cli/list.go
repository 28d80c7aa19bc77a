package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list <category>",
		Short: "List records, newest first",
		Args:  cobra.ExactArgs(1),
		Run:   runList,
	}

	cmd.Flags().String("date", "", "Only records on this day (YYYY-MM-DD, or today/yesterday)")
	cmd.Flags().String("from", "", "Range start, inclusive")
	cmd.Flags().String("to", "", "Range end, inclusive")
	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")

	RootCmd.AddCommand(cmd)
}

func parseDateFlag(cmd *cobra.Command, name string, now time.Time) time.Time {
	raw, _ := cmd.Flags().GetString(name)
	switch raw {
	case "":
		return time.Time{}
	case "today":
		return datetime.StartOfDay(now)
	case "yesterday":
		return datetime.StartOfDay(now).AddDate(0, 0, -1)
	}
	t, ok := datetime.Parse(raw)
	if !ok {
		exitErr("list", fmt.Errorf("invalid --%s %q", name, raw))
	}
	return t
}

func runList(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	now := s.Now()
	to := parseDateFlag(cmd, "to", now)
	if raw, _ := cmd.Flags().GetString("to"); !to.IsZero() && !strings.Contains(raw, ":") {
		// a bare date includes the whole day
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	p := currentProfile(cmd, s)
	records, err := s.GetRecords(cmd.Context(), store.ListParams{
		ProfileID: p.ID,
		Category:  c,
		Day:       parseDateFlag(cmd, "date", now),
		From:      parseDateFlag(cmd, "from", now),
		To:        to,
		Limit:     limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	output(cmd, records, func(w io.Writer) {
		if len(records) == 0 {
			fmt.Fprintf(w, "no %s records\n", c)
			return
		}
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, when(r.Time, now), summarize(r))
		}
		tw.Flush()
	})
}
