package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

type flagKind int

const (
	kindString flagKind = iota
	kindFloat
	kindInt
	kindBool
	kindTime
)

// payloadFlag maps a command-line flag onto a payload JSON field.
type payloadFlag struct {
	name  string
	key   string
	kind  flagKind
	usage string
}

var payloadFlags = map[model.Category][]payloadFlag{
	model.CategoryFeeding: {
		{"type", "subtype", kindString, "Type: bottle, breast, food (feeding) or wet, dirty, both (diaper)"},
		{"amount", "amount", kindFloat, "Amount in ml"},
		{"side", "side", kindString, "Side: left, right, both, none"},
		{"duration", "duration", kindInt, "Duration (feeding: seconds, sleep: minutes)"},
	},
	model.CategorySleep: {
		{"end", "end", kindTime, "Sleep end time (YYYY-MM-DD HH:mm)"},
		{"duration", "duration", kindInt, ""},
		{"quality", "quality", kindString, "Sleep quality: good, normal, poor"},
	},
	model.CategoryDiaper: {
		{"type", "subtype", kindString, ""},
		{"rash", "rash", kindBool, "Diaper rash observed"},
	},
	model.CategoryMedicine: {
		{"name", "name", kindString, "Medicine name"},
		{"dosage", "dosage", kindString, "Dosage, e.g. 2.5ml"},
		{"frequency", "frequency_per_day", kindInt, "Doses per day"},
		{"course", "course_days", kindInt, "Course length in days"},
	},
	model.CategoryGrowth: {
		{"height", "height_cm", kindFloat, "Height in cm"},
		{"weight", "weight_kg", kindFloat, "Weight in kg"},
		{"head", "head_cm", kindFloat, "Head circumference in cm"},
		{"milestone", "milestone", kindString, "Milestone reached"},
	},
}

func init() {
	RootCmd.AddCommand(newAddCmd())
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <category>",
		Short: "Log a record",
		Long: `Log a feeding, sleep, diaper, medicine or growth record for the active profile.

Examples:
  babylog add feeding --type bottle --amount 120
  babylog add sleep --time "2024-03-10 13:00" --end "2024-03-10 14:30"
  babylog add diaper --type dirty --rash
  babylog add medicine --name "vitamin d" --dosage 400IU
  babylog add growth --weight 5.2 --height 58`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"feeding", "sleep", "diaper", "medicine", "growth"},
		Run:       runAdd,
	}

	cmd.Flags().StringP("time", "t", "", "Record time (default: now)")
	cmd.Flags().StringP("note", "m", "", "Free-text note")

	seen := map[string]bool{}
	for _, c := range model.Categories {
		for _, pf := range payloadFlags[c] {
			if seen[pf.name] {
				continue
			}
			seen[pf.name] = true
			switch pf.kind {
			case kindFloat:
				cmd.Flags().Float64(pf.name, 0, pf.usage)
			case kindInt:
				cmd.Flags().Int(pf.name, 0, pf.usage)
			case kindBool:
				cmd.Flags().Bool(pf.name, false, pf.usage)
			default:
				cmd.Flags().String(pf.name, "", pf.usage)
			}
		}
	}
	return cmd
}

// payloadPatch collects the changed payload flags of category c.
func payloadPatch(cmd *cobra.Command, c model.Category) (model.Patch, error) {
	patch := model.Patch{}
	own := map[string]bool{}
	for _, pf := range payloadFlags[c] {
		own[pf.name] = true
		if !cmd.Flags().Changed(pf.name) {
			continue
		}
		switch pf.kind {
		case kindFloat:
			v, _ := cmd.Flags().GetFloat64(pf.name)
			patch[pf.key] = v
		case kindInt:
			v, _ := cmd.Flags().GetInt(pf.name)
			patch[pf.key] = v
		case kindBool:
			v, _ := cmd.Flags().GetBool(pf.name)
			patch[pf.key] = v
		case kindTime:
			raw, _ := cmd.Flags().GetString(pf.name)
			t, ok := datetime.Parse(raw)
			if !ok {
				return nil, fmt.Errorf("invalid --%s %q", pf.name, raw)
			}
			patch[pf.key] = t
		default:
			v, _ := cmd.Flags().GetString(pf.name)
			patch[pf.key] = v
		}
	}

	var foreign []string
	for _, all := range payloadFlags {
		for _, pf := range all {
			if !own[pf.name] && cmd.Flags().Changed(pf.name) {
				foreign = append(foreign, "--"+pf.name)
				own[pf.name] = true
			}
		}
	}
	if len(foreign) > 0 {
		return nil, fmt.Errorf("%s not valid for %s records", strings.Join(foreign, ", "), c)
	}
	return patch, nil
}

func runAdd(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	timeStr, _ := cmd.Flags().GetString("time")
	note, _ := cmd.Flags().GetString("note")

	rec := model.NewRecord(c)
	if timeStr != "" {
		t, ok := datetime.Parse(timeStr)
		if !ok {
			exitErr("add", fmt.Errorf("invalid --time %q", timeStr))
		}
		rec.Time = t
	}
	rec.Note = strings.TrimSpace(note)

	patch, err := payloadPatch(cmd, c)
	if err != nil {
		exitErr("add", err)
	}
	if err := rec.ApplyPatch(patch); err != nil {
		exitErr("add", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	saved, err := s.AddRecord(cmd.Context(), p.ID, rec)
	if err != nil {
		exitErr("add", err)
	}

	output(cmd, saved, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s logged for %s: %s\n", c, saved.ID, p.Name, summarize(*saved))
	})
}
