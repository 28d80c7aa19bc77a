package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "today [category]",
		Short: "Today's statistics (all categories when none is given)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runToday,
	}

	RootCmd.AddCommand(cmd)
}

func runToday(cmd *cobra.Command, args []string) {
	categories := model.Categories
	if len(args) == 1 {
		categories = []model.Category{parseCategoryArg(args[0])}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	engine := aggregate.New(s)

	var stats []aggregate.DayStats
	for _, c := range categories {
		st, err := engine.TodayStats(cmd.Context(), p.ID, c)
		if err != nil {
			exitErr("today", err)
		}
		stats = append(stats, st)
	}

	output(cmd, stats, func(w io.Writer) {
		now := s.Now()
		for _, st := range stats {
			fmt.Fprintf(w, "%-9s %d", st.Category, st.Count)
			switch st.Category {
			case model.CategoryFeeding:
				fmt.Fprintf(w, "  total %gml  avg %gml", st.Total, st.Average)
			case model.CategorySleep:
				fmt.Fprintf(w, "  total %s  avg %s", datetime.FormatDuration(int(st.Total)), datetime.FormatDuration(int(st.Average)))
			}
			if st.LastTime != nil {
				fmt.Fprintf(w, "  last %s", when(*st.LastTime, now))
			}
			if len(st.Breakdown) > 0 {
				keys := make([]string, 0, len(st.Breakdown))
				for k := range st.Breakdown {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprint(w, "  [")
				for i, k := range keys {
					if i > 0 {
						fmt.Fprint(w, " ")
					}
					fmt.Fprintf(w, "%s:%d", k, st.Breakdown[k])
				}
				fmt.Fprint(w, "]")
			}
			fmt.Fprintln(w)
		}
	})
}
