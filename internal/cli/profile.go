package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rcliao/babylog/internal/datetime"
	"github.com/rcliao/babylog/internal/model"
	"github.com/rcliao/babylog/internal/store"
)

func init() {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Baby profile management",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile (the first one becomes active)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runProfileAdd,
	}
	addCmd.Flags().StringP("gender", "g", "unknown", "Gender: boy, girl, unknown")
	addCmd.Flags().StringP("birth", "b", "", "Birth date (YYYY-MM-DD)")
	addCmd.Flags().String("avatar", "", "Avatar URL or emoji")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Run:   runProfileList,
	}

	useCmd := &cobra.Command{
		Use:   "use <profile>",
		Short: "Select the active profile",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileUse,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <profile>",
		Short: "Delete a profile (its records are kept)",
		Args:  cobra.ExactArgs(1),
		Run:   runProfileRm,
	}

	profileCmd.AddCommand(addCmd, listCmd, useCmd, rmCmd)
	RootCmd.AddCommand(profileCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) {
	gender, _ := cmd.Flags().GetString("gender")
	birthStr, _ := cmd.Flags().GetString("birth")
	avatar, _ := cmd.Flags().GetString("avatar")

	params := store.AddProfileParams{
		Name:   strings.Join(args, " "),
		Gender: gender,
		Avatar: avatar,
	}
	if birthStr != "" {
		birth, ok := datetime.Parse(birthStr)
		if !ok {
			exitErr("profile add", fmt.Errorf("invalid birth date %q", birthStr))
		}
		params.BirthDate = birth
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.AddProfile(cmd.Context(), params)
	if err != nil {
		exitErr("profile add", err)
	}

	output(cmd, p, func(w io.Writer) {
		fmt.Fprintf(w, "created profile %s (%s)\n", p.Name, p.ID)
	})
}

func runProfileList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	profiles, err := s.ListProfiles(cmd.Context())
	if err != nil {
		exitErr("profile list", err)
	}
	activeID := ""
	if active, err := s.ActiveProfile(cmd.Context()); err == nil {
		activeID = active.ID
	}

	output(cmd, profiles, func(w io.Writer) {
		if len(profiles) == 0 {
			fmt.Fprintln(w, "no profiles")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		for _, p := range profiles {
			mark := " "
			if p.ID == activeID {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, shortID(p.ID), p.Name, p.Gender, profileAge(p, s))
		}
		tw.Flush()
	})
}

func profileAge(p model.Profile, s *store.Store) string {
	if p.BirthDate.IsZero() {
		return "-"
	}
	return datetime.AgeAt(p.BirthDate, s.Now()).String()
}

func runProfileUse(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.ResolveProfile(cmd.Context(), args[0])
	if err != nil {
		exitErr("profile use", err)
	}
	if err := s.SetActiveProfile(cmd.Context(), p.ID); err != nil {
		exitErr("profile use", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"active":%q}`+"\n", p.ID)
}

func runProfileRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.ResolveProfile(cmd.Context(), args[0])
	if err != nil {
		exitErr("profile rm", err)
	}
	if err := s.DeleteProfile(cmd.Context(), p.ID); err != nil {
		exitErr("profile rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", p.ID)
}
