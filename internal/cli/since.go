package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/datetime"
)

func init() {
	cmd := &cobra.Command{
		Use:   "since <category>",
		Short: "Time since the last record",
		Args:  cobra.ExactArgs(1),
		Run:   runSince,
	}

	cmd.Flags().Int("threshold", 0, "Also report whether a reminder is due after this many minutes")

	RootCmd.AddCommand(cmd)
}

type sinceResult struct {
	Category string `json:"category"`
	Minutes  *int   `json:"minutes"`
	Due      *bool  `json:"due,omitempty"`
}

func runSince(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	threshold, _ := cmd.Flags().GetInt("threshold")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	engine := aggregate.New(s)

	res := sinceResult{Category: string(c)}
	last, ok, err := engine.LastRecord(cmd.Context(), p.ID, c)
	if err != nil {
		exitErr("since", err)
	}
	if ok {
		m := datetime.DiffMinutes(last.Time, s.Now())
		res.Minutes = &m
	}
	if threshold > 0 {
		due, _, err := engine.ReminderDue(cmd.Context(), p.ID, c, threshold)
		if err != nil {
			exitErr("since", err)
		}
		res.Due = &due
	}

	output(cmd, res, func(w io.Writer) {
		if !ok {
			fmt.Fprintf(w, "no %s recorded yet\n", c)
			return
		}
		fmt.Fprintf(w, "last %s %s, %s ago\n", c, when(last.Time, s.Now()), datetime.FormatDuration(*res.Minutes))
		if res.Due != nil && *res.Due {
			fmt.Fprintln(w, "reminder due")
		}
	})
}
