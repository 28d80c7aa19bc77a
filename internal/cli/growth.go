package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/datetime"
)

func init() {
	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Growth curve and latest measurement",
		Run:   runGrowth,
	}

	RootCmd.AddCommand(cmd)
}

func runGrowth(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	engine := aggregate.New(s)
	curve, err := engine.GrowthCurve(cmd.Context(), p.ID)
	if err != nil {
		exitErr("growth", err)
	}
	latest, hasLatest, err := engine.LatestGrowth(cmd.Context(), p.ID)
	if err != nil {
		exitErr("growth", err)
	}

	output(cmd, curve, func(w io.Writer) {
		if len(curve) == 0 {
			fmt.Fprintln(w, "no growth records")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "date\tage\theight\tweight\thead")
		for _, pt := range curve {
			age := "-"
			if !p.BirthDate.IsZero() {
				age = datetime.AgeAt(p.BirthDate, pt.Time).String()
			}
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\n", datetime.Format(pt.Time, datetime.LayoutDate), age, pt.HeightCM, pt.WeightKG, pt.HeadCM)
		}
		tw.Flush()
		if hasLatest {
			fmt.Fprintf(w, "latest %s: %s\n", when(latest.Time, s.Now()), summarize(*latest))
		}
	})
}
