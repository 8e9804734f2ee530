package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bobox/internal/unit"
	"bobox/pkg/client"
)

func newRootCmd() *cobra.Command {
	var apiURL string

	root := &cobra.Command{
		Use:          "unitctl",
		Short:        "Inspect and update capsule and cabin status",
		SilenceUsage: true,
	}
	defaultURL := os.Getenv("UNITCTL_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "unit API base URL")

	c := func() *client.Client { return client.New(apiURL) }

	root.AddCommand(
		newListCmd(c),
		newGetCmd(c),
		newCreateCmd(c),
		newSetStatusCmd(c),
		newNextCmd(c),
	)
	return root
}

func newListCmd(c func() *client.Client) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List units, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter unit.Status
			if status != "" {
				st, err := unit.ParseStatus(status)
				if err != nil {
					return fmt.Errorf("%w (valid: %s)", err, unit.StatusValues())
				}
				filter = st
			}
			units, err := c().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printUnits(cmd.OutOrStdout(), units)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show units in this status")
	return cmd
}

func newGetCmd(c func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printUnits(cmd.OutOrStdout(), []unit.Unit{u})
			return nil
		},
	}
}

func newCreateCmd(c func() *client.Client) *cobra.Command {
	var name, kind string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a unit (starts Available)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := unit.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("%w (valid: capsule, cabin)", err)
			}
			u, err := c().Create(cmd.Context(), name, k)
			if err != nil {
				return err
			}
			printUnits(cmd.OutOrStdout(), []unit.Unit{u})
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "unit name")
	cmd.Flags().StringVar(&kind, "type", string(unit.KindCapsule), "unit type: capsule or cabin")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSetStatusCmd(c func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Request a status transition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := unit.ParseStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, unit.StatusValues())
			}
			u, err := c().UpdateStatus(cmd.Context(), args[0], st)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && len(apiErr.Allowed) > 0 {
					return fmt.Errorf("%s (allowed: %s)", apiErr.Message, displayNames(apiErr.Allowed))
				}
				return err
			}
			printUnits(cmd.OutOrStdout(), []unit.Unit{u})
			return nil
		},
	}
}

func newNextCmd(c func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "next ID",
		Short: "Show the statuses a unit may move to next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c().Transitions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is %s\n", res.ID, res.Status.DisplayName())
			for _, n := range res.Next {
				fmt.Fprintf(out, "  -> %s\n", n.DisplayName)
			}
			return nil
		},
	}
}

func printUnits(w io.Writer, units []unit.Unit) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tLAST UPDATED")
	for _, u := range units {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Kind.DisplayName(), u.Status.DisplayName(), u.LastUpdated.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func displayNames(ss []unit.Status) string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.DisplayName())
	}
	return strings.Join(out, ", ")
}
