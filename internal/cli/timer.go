package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/babylog/internal/metrics"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
	"github.com/rcliao/babylog/internal/timer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time a breastfeeding session interactively",
		Long: `Start a breastfeeding timer and control it from stdin:

  pause | resume | left | right | both | status | stop | cancel

"stop" saves the session as a breast feeding record. Ctrl-C or end of input
discards it. While the session runs, "babylog remind" holds back feeding
reminders.`,
		Run: runTimer,
	}

	cmd.Flags().String("side", "left", "Starting side: left, right, both")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	RootCmd.AddCommand(cmd)
}

func runTimer(cmd *cobra.Command, args []string) {
	side, _ := cmd.Flags().GetString("side")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	s, err := openStore(store.WithObserver(collector))
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	out := cmd.OutOrStdout()

	var tm *timer.Timer
	tm, err = timer.New(s,
		timer.WithLogger(log),
		timer.WithObserver(collector),
		timer.WithSessionMarker(s),
		timer.WithTickInterval(cfg.Timer.TickInterval),
		timer.WithTickFunc(func(d time.Duration) {
			fmt.Fprintf(out, "\r%-5s %s ", tm.Snapshot().Side, formatSeconds(int(d/time.Second)))
		}),
	)
	if err != nil {
		exitErr("timer", err)
	}
	defer tm.Close()

	if err := tm.Start(p.ID, model.Side(side)); err != nil {
		exitErr("timer", err)
	}
	fmt.Fprintf(out, "timing %s for %s, type stop to save\n", side, p.Name)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	var g errgroup.Group
	serveMetrics(metricsCtx, &g, reg, metricsAddr)
	defer func() {
		stopMetrics()
		if err := g.Wait(); err != nil {
			log.Error("metrics server", "error", err)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			lines <- strings.ToLower(strings.TrimSpace(sc.Text()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			tm.Cancel()
			fmt.Fprintln(out, "\nsession discarded")
			return
		case line, ok := <-lines:
			if !ok {
				if tm.Active() {
					tm.Cancel()
					fmt.Fprintln(out, "\nend of input, session discarded")
				}
				return
			}
			if done := handleTimerCommand(ctx, out, tm, line); done {
				return
			}
		}
	}
}

// handleTimerCommand applies one stdin command and reports whether the
// session is over.
func handleTimerCommand(ctx context.Context, out io.Writer, tm *timer.Timer, line string) bool {
	var err error
	switch line {
	case "":
		return false
	case "pause", "p":
		err = tm.Pause()
	case "resume", "r":
		err = tm.Resume()
	case "left", "right", "both":
		err = tm.SwitchSide(model.Side(line))
	case "status":
		snap := tm.Snapshot()
		fmt.Fprintf(out, "\n%s %s %s\n", snap.State, snap.Side, formatSeconds(int(snap.Elapsed/time.Second)))
	case "stop", "s":
		rec, err := tm.Stop(ctx)
		if err != nil {
			fmt.Fprintf(out, "\nerror: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "\nsaved feeding %s: %s\n", rec.ID, summarize(*rec))
		return true
	case "cancel", "c":
		if err := tm.Cancel(); err == nil {
			fmt.Fprintln(out, "\nsession discarded")
		}
		return true
	default:
		err = fmt.Errorf("unknown command %q", line)
	}
	if err != nil {
		fmt.Fprintf(out, "\nerror: %v\n", err)
	}
	return false
}
