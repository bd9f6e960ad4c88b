package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sigreer/bootprobe/internal/envstore"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect variables stored with probe --set",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *envstore.Store) error {
			vars, err := s.List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, v := range vars {
				fmt.Fprintf(w, "%s=%s\n", v.Name, v.Value)
			}
			return nil
		})
	},
}

var envGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print one variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *envstore.Store) error {
			value, err := s.Get(args[0])
			if errors.Is(err, envstore.ErrNotFound) {
				return fmt.Errorf("variable %q is not set", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		})
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset NAME",
	Short: "Remove a variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *envstore.Store) error {
			err := s.Unset(args[0])
			if errors.Is(err, envstore.ErrNotFound) {
				return fmt.Errorf("variable %q is not set", args[0])
			}
			return err
		})
	},
}

var envHistoryCmd = &cobra.Command{
	Use:   "history NAME",
	Short: "Show changes to a variable, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(cmd, func(s *envstore.Store) error {
			events, err := s.History(args[0], limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range events {
				switch e.Action {
				case envstore.ActionSet:
					fmt.Fprintf(w, "%-14s set   %q -> %q\n", humanize.Time(e.Timestamp), e.OldValue, e.NewValue)
				default:
					fmt.Fprintf(w, "%-14s unset %q\n", humanize.Time(e.Timestamp), e.OldValue)
				}
			}
			return nil
		})
	},
}

func init() {
	envHistoryCmd.Flags().IntP("limit", "n", 20, "maximum number of events")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envGetCmd)
	envCmd.AddCommand(envUnsetCmd)
	envCmd.AddCommand(envHistoryCmd)
}

func withStore(cmd *cobra.Command, fn func(*envstore.Store) error) error {
	a, err := setup(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	s, err := envstore.Open(a.cfg.Env.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
