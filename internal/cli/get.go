package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <category> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	rec, err := s.GetRecord(cmd.Context(), p.ID, c, args[1])
	if err != nil {
		exitErr("get", err)
	}

	output(cmd, rec, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n%s\n%s\n", c, rec.ID, when(rec.Time, s.Now()), summarize(*rec))
	})
}
