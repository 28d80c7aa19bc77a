package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chart <category>",
		Short: "Daily counts and amounts, oldest first",
		Args:  cobra.ExactArgs(1),
		Run:   runChart,
	}

	cmd.Flags().Int("days", 7, "Number of days ending today")

	RootCmd.AddCommand(cmd)
}

const chartWidth = 30

func runChart(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	days, _ := cmd.Flags().GetInt("days")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	points, err := aggregate.New(s).ChartSeries(cmd.Context(), p.ID, c, days)
	if err != nil {
		exitErr("chart", err)
	}

	output(cmd, points, func(w io.Writer) {
		useAmount := c == model.CategoryFeeding || c == model.CategorySleep
		value := func(pt aggregate.ChartPoint) float64 {
			if useAmount {
				return pt.Amount
			}
			return float64(pt.Count)
		}
		top := lo.Max(lo.Map(points, func(pt aggregate.ChartPoint, _ int) float64 { return value(pt) }))
		for _, pt := range points {
			bar := 0
			if top > 0 {
				bar = int(value(pt) / top * chartWidth)
			}
			fmt.Fprintf(w, "%s %-*s %d", pt.Label, chartWidth, strings.Repeat("#", bar), pt.Count)
			if useAmount {
				fmt.Fprintf(w, " / %g", pt.Amount)
			}
			fmt.Fprintln(w)
		}
	})
}
