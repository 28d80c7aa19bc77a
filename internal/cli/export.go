package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Long:  "Export profiles, records and settings as one JSON document, to stdout or a file.",
		Run:   runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	outPath, _ := cmd.Flags().GetString("output")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snap, err := s.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(snap, "", "  ")
	if outPath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	if err := os.WriteFile(outPath, append(b, '\n'), 0o600); err != nil {
		exitErr("export", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"path":%q}`+"\n", outPath)
}
