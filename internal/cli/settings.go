package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reminder settings",
		Long: `Show the settings, or change them:

  babylog settings --remind diaper=off --threshold feeding=150 --unit oz`,
		Run: runSettings,
	}

	cmd.Flags().StringArray("remind", nil, "Enable or disable reminders: category=on|off (repeatable)")
	cmd.Flags().StringArray("threshold", nil, "Reminder threshold in minutes: category=N, 0 resets (repeatable)")
	cmd.Flags().String("unit", "", "Volume unit label")

	RootCmd.AddCommand(cmd)
}

type settingsChange func(*store.Settings)

func parseSettingsFlags(remind, thresholds []string, unit string) ([]settingsChange, error) {
	var changes []settingsChange
	for _, kv := range remind {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("expected category=on|off, got %q", kv)
		}
		c, err := model.ParseCategory(k)
		if err != nil {
			return nil, err
		}
		on, err := parseOnOff(v)
		if err != nil {
			return nil, fmt.Errorf("reminder for %s: %w", c, err)
		}
		changes = append(changes, func(s *store.Settings) { s.Reminders[c] = on })
	}
	for _, kv := range thresholds {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("expected category=minutes, got %q", kv)
		}
		c, err := model.ParseCategory(k)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("threshold for %s: %w", c, err)
		}
		changes = append(changes, func(s *store.Settings) {
			if n == 0 {
				delete(s.Thresholds, c)
				return
			}
			s.Thresholds[c] = n
		})
	}
	if unit != "" {
		changes = append(changes, func(s *store.Settings) { s.Unit = unit })
	}
	return changes, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func runSettings(cmd *cobra.Command, args []string) {
	remind, _ := cmd.Flags().GetStringArray("remind")
	thresholds, _ := cmd.Flags().GetStringArray("threshold")
	unit, _ := cmd.Flags().GetString("unit")

	changes, err := parseSettingsFlags(remind, thresholds, unit)
	if err != nil {
		exitErr("settings", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var st store.Settings
	if len(changes) == 0 {
		st, err = s.Settings(cmd.Context())
	} else {
		st, err = s.UpdateSettings(cmd.Context(), func(st *store.Settings) {
			for _, change := range changes {
				change(st)
			}
		})
	}
	if err != nil {
		exitErr("settings", err)
	}

	output(cmd, st, func(w io.Writer) {
		fmt.Fprintf(w, "unit  %s\n", st.Unit)
		for _, c := range model.Categories {
			state := "off"
			if st.ReminderEnabled(c) {
				state = "on"
			}
			fmt.Fprintf(w, "  %-9s reminders %s", c, state)
			if n, ok := st.Thresholds[c]; ok {
				fmt.Fprintf(w, ", after %dm", n)
			}
			fmt.Fprintln(w)
		}
	})
}
