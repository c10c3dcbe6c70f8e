package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserDeleteCmd())
	cmd.AddCommand(newUserPasswordCmd())

	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserList

			if err := client.Get("/users", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <username>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UserResult

			if err := client.Get("/users/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUserCreateCmd() *cobra.Command {
	var pass string
	var roles []string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a new user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				return fmt.Errorf("--pass is required")
			}

			req := map[string]any{
				"username": args[0],
				"password": pass,
			}
			if len(roles) > 0 {
				req["roles"] = roles
			}
			var result UserResult

			if err := client.Post("/users", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Initial roles (repeatable; defaults to player)")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/users/"+url.PathEscape(args[0]), nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("User %s deleted", args[0]))
			return nil
		},
	}
}

func newUserPasswordCmd() *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "password <username>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				return fmt.Errorf("--pass is required")
			}

			req := map[string]string{"password": pass}
			var result UserResult

			if err := client.Patch("/users/"+url.PathEscape(args[0])+"/password", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "pass", "", "New password (required)")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}
