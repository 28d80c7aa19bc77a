package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <category> <id>",
		Short: "Change fields of a record",
		Long: `Change payload fields or the note of a record. Values are read as JSON when
they parse, otherwise as plain strings. Time fields such as a sleep end accept
"YYYY-MM-DD HH:mm" in local time.

Example:
  babylog update feeding 01HQ... --set amount=150 --set note="spit up"`,
		Args: cobra.ExactArgs(2),
		Run:  runUpdate,
	}

	cmd.Flags().StringArrayP("set", "s", nil, "Field assignment key=value (repeatable)")
	cmd.MarkFlagRequired("set")

	RootCmd.AddCommand(cmd)
}

// timeKeys lists the payload keys of c that hold timestamps.
func timeKeys(c model.Category) map[string]bool {
	keys := map[string]bool{}
	for _, pf := range payloadFlags[c] {
		if pf.kind == kindTime {
			keys[pf.key] = true
		}
	}
	return keys
}

func parseAssignments(c model.Category, sets []string) (model.Patch, error) {
	patch := model.Patch{}
	times := timeKeys(c)
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", kv)
		}
		if times[k] {
			if v == "" || v == "null" {
				patch[k] = nil
				continue
			}
			t, ok := datetime.Parse(v)
			if !ok {
				return nil, fmt.Errorf("invalid time for %s: %q", k, v)
			}
			patch[k] = t
			continue
		}
		var decoded any
		if k != "note" && json.Unmarshal([]byte(v), &decoded) == nil {
			patch[k] = decoded
			continue
		}
		patch[k] = v
	}
	return patch, nil
}

func runUpdate(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	sets, _ := cmd.Flags().GetStringArray("set")

	patch, err := parseAssignments(c, sets)
	if err != nil {
		exitErr("update", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	rec, err := s.UpdateRecord(cmd.Context(), p.ID, c, args[1], patch)
	if err != nil {
		exitErr("update", err)
	}

	output(cmd, rec, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s updated: %s\n", c, rec.ID, summarize(*rec))
	})
}
