package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

func init() {
	sleepCmd := &cobra.Command{
		Use:   "sleep",
		Short: "Start and end sleeps",
		Long: `Track a sleep as it happens: "sleep start" logs an open sleep and
"sleep end" closes it and derives the duration. Use "add sleep" for sleeps
that already ended.`,
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Log the start of a sleep",
		Args:  cobra.NoArgs,
		Run:   runSleepStart,
	}
	startCmd.Flags().StringP("time", "t", "", "Start time (default: now)")
	startCmd.Flags().StringP("note", "m", "", "Free-text note")

	endCmd := &cobra.Command{
		Use:   "end [id]",
		Short: "End the sleep in progress",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSleepEnd,
	}
	endCmd.Flags().StringP("time", "t", "", "End time (default: now)")
	endCmd.Flags().String("quality", "", "Sleep quality: good, normal, poor")

	sleepCmd.AddCommand(startCmd, endCmd)
	RootCmd.AddCommand(sleepCmd)
}

// timeFlag parses the --time flag; an unset flag yields the zero time.
func timeFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("time")
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := datetime.Parse(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --time %q", raw)
	}
	return t, nil
}

func runSleepStart(cmd *cobra.Command, args []string) {
	at, err := timeFlag(cmd)
	if err != nil {
		exitErr("sleep start", err)
	}
	note, _ := cmd.Flags().GetString("note")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	rec, err := s.StartSleep(cmd.Context(), p.ID, at, strings.TrimSpace(note))
	if err != nil {
		exitErr("sleep start", err)
	}

	output(cmd, rec, func(w io.Writer) {
		fmt.Fprintf(w, "sleep %s started for %s at %s\n", rec.ID, p.Name, datetime.Format(rec.Time, datetime.LayoutClock))
	})
}

func runSleepEnd(cmd *cobra.Command, args []string) {
	at, err := timeFlag(cmd)
	if err != nil {
		exitErr("sleep end", err)
	}
	quality, _ := cmd.Flags().GetString("quality")
	var id string
	if len(args) == 1 {
		id = args[0]
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	rec, err := s.EndSleep(cmd.Context(), p.ID, id, at, model.SleepQuality(quality))
	if err != nil {
		exitErr("sleep end", err)
	}

	output(cmd, rec, func(w io.Writer) {
		fmt.Fprintf(w, "sleep %s ended: %s\n", rec.ID, summarize(*rec))
	})
}
