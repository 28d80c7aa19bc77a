package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/babylog/internal/aggregate"
	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/metrics"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/reminder"
	"github.com/rcliao/babylog/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Poll for overdue feedings and print reminders",
		Long: `Check the active profile every interval and print a reminder while a
category is overdue. Reminders repeat on every poll until a new record is
logged; use --throttle to space them out. Feeding reminders are held back
while "babylog timer" is timing a session.`,
		Run: runRemind,
	}

	cmd.Flags().Bool("once", false, "Check once and exit")
	cmd.Flags().Duration("interval", 0, "Poll interval (default from config, 1m)")
	cmd.Flags().Duration("throttle", 0, "Minimum gap between repeated reminders (default from config, off)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	RootCmd.AddCommand(cmd)
}

func reminderRules() []reminder.Rule {
	rules := []reminder.Rule{{Category: model.CategoryFeeding, Threshold: cfg.Reminder.FeedingThreshold}}
	if cfg.Reminder.DiaperThreshold > 0 {
		rules = append(rules, reminder.Rule{Category: model.CategoryDiaper, Threshold: cfg.Reminder.DiaperThreshold})
	}
	return rules
}

// sessionProbe reports whether another babylog process has published a live
// session for category c.
func sessionProbe(ctx context.Context, s *store.Store, c model.Category, maxAge time.Duration) aggregate.SessionProbe {
	return aggregate.SessionProbeFunc(func() bool {
		_, ok, err := s.ActiveSession(ctx, c, maxAge)
		if err != nil {
			log.Warn("read session marker failed", "category", c, "error", err)
			return false
		}
		return ok
	})
}

func runRemind(cmd *cobra.Command, args []string) {
	once, _ := cmd.Flags().GetBool("once")
	interval, _ := cmd.Flags().GetDuration("interval")
	throttle, _ := cmd.Flags().GetDuration("throttle")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if interval <= 0 {
		interval = cfg.Reminder.Interval
	}
	if throttle <= 0 {
		throttle = cfg.Reminder.Throttle
	}
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

	out := cmd.OutOrStdout()
	clock := clockwork.NewRealClock()
	var notify reminder.Notifier = func(n reminder.Notification) {
		fmt.Fprintf(out, "[%s] %s\n", datetime.Format(clock.Now(), datetime.LayoutClock), n.Message)
	}
	if throttle > 0 {
		notify = reminder.Throttle(notify, throttle, clock)
	}

	engine := aggregate.New(s)
	engine.RegisterSession(model.CategoryFeeding, sessionProbe(cmd.Context(), s, model.CategoryFeeding, cfg.Reminder.SessionMaxAge))

	poller := reminder.NewPoller(engine, s, notify,
		reminder.WithRules(reminderRules()...),
		reminder.WithInterval(interval),
		reminder.WithPermissionGate(reminder.Static(reminder.ParsePermission(cfg.Reminder.Permission))),
		reminder.WithLogger(log),
		reminder.WithObserver(collector),
	)

	if once {
		sent, err := poller.RunOnce(cmd.Context())
		if err != nil {
			exitErr("remind", err)
		}
		if len(sent) == 0 {
			fmt.Fprintln(out, "nothing due")
		}
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h := poller.Start(ctx)
		<-ctx.Done()
		h.Stop()
		return nil
	})
	serveMetrics(ctx, g, reg, metricsAddr)

	fmt.Fprintf(out, "watching %d rule(s) every %s, Ctrl-C to stop\n", len(reminderRules()), interval)
	if err := g.Wait(); err != nil {
		exitErr("remind", err)
	}
}
