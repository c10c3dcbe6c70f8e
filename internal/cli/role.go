package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Role administration commands",
	}

	cmd.AddCommand(newRoleListCmd())
	cmd.AddCommand(newRoleAssignCmd())
	cmd.AddCommand(newRoleReplaceCmd())
	cmd.AddCommand(newRoleRevokeCmd())

	return cmd
}

func newRoleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <username>",
		Short: "List a user's roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoleList

			if err := client.Get("/users/"+url.PathEscape(args[0])+"/roles", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoleAssignCmd() *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "assign <username>",
		Short: "Grant roles to a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(roles) == 0 {
				return fmt.Errorf("at least one --role is required")
			}

			req := map[string][]string{"roles": roles}
			var result UserResult

			if err := client.Post("/users/"+url.PathEscape(args[0])+"/roles", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to grant (repeatable)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newRoleReplaceCmd() *cobra.Command {
	var roles []string

	cmd := &cobra.Command{
		Use:   "replace <username>",
		Short: "Replace a user's roles (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(roles) == 0 {
				return fmt.Errorf("at least one --role is required")
			}

			req := map[string][]string{"roles": roles}
			var result UserResult

			if err := client.Put("/users/"+url.PathEscape(args[0])+"/roles", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to set (repeatable)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newRoleRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <username> <role>",
		Short: "Revoke a role from a user (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserResult

			path := "/users/" + url.PathEscape(args[0]) + "/roles/" + url.PathEscape(args[1])
			if err := client.Delete(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
