package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <category> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	c := parseCategoryArg(args[0])
	id := args[1]

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p := currentProfile(cmd, s)
	if err := s.DeleteRecord(cmd.Context(), p.ID, c, id); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"category":%q,"id":%q}`+"\n", c, id)
}
