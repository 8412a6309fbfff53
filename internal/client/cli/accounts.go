package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
)

func accountsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and maintain legacy server accounts",
	}
	cmd.AddCommand(
		accountsListCmd(rt),
		accountsCurrentCmd(rt),
		accountsAddCmd(rt),
		accountsUpdateCmd(rt),
		accountsStateCmd(rt),
		accountsPruneCmd(rt),
	)
	return cmd
}

func accountsListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List accounts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			all, err := rt.app.uc.GetAccounts.Invoke(ctx)
			if err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), all)
		},
	}
}

func accountsCurrentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			a, err := rt.app.uc.GetCurrentAccount.Invoke(ctx)
			if err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), []models.Account{a})
		},
	}
}

func accountsAddCmd(rt *runtime) *cobra.Command {
	var token, email string
	cmd := &cobra.Command{
		Use:   "add <server>",
		Short: "Add an account with a personal access token and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			id, err := rt.app.uc.SaveAccount.Invoke(ctx, models.Account{
				ServerAddress: args[0],
				IsCurrent:     true,
				Auth:          models.AuthenticationFromCredentials(models.Credentials{AccessToken: token}),
				Email:         email,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %d saved\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "personal access token")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func accountsUpdateCmd(rt *runtime) *cobra.Command {
	var email, role, accountType, fireflyID string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change fields of the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patches := profilePatches(cmd, email, role, accountType, fireflyID)
			if len(patches) == 0 {
				return fmt.Errorf("nothing to update")
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.UpdateCurrentAccount.Invoke(ctx, patches...)
		},
	}
	profileFlags(cmd, &email, &role, &accountType, &fireflyID)
	return cmd
}

func accountsStateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "state <state>",
		Short: "Find the account waiting for a login redirect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			a, err := rt.app.uc.GetAccountByState.Invoke(ctx, args[0])
			if err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), []models.Account{a})
		},
	}
}

func accountsPruneCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete accounts of abandoned logins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.RemoveStaleAccounts.Invoke(ctx)
		},
	}
}

// profileFlags and profilePatches are shared by accounts and users.
func profileFlags(cmd *cobra.Command, email, role, recordType, fireflyID *string) {
	cmd.Flags().StringVar(email, "email", "", "email")
	cmd.Flags().StringVar(role, "role", "", "role on the server")
	cmd.Flags().StringVar(recordType, "type", "", "account type")
	cmd.Flags().StringVar(fireflyID, "firefly-id", "", "id on the server")
}

// profilePatches turns the flags that were set into patches. A flag set to
// "" clears the field.
func profilePatches(cmd *cobra.Command, email, role, recordType, fireflyID string) []models.Patch {
	var patches []models.Patch
	flags := cmd.Flags()
	if flags.Changed("email") {
		patches = append(patches, models.SetEmail{Value: email})
	}
	if flags.Changed("role") {
		patches = append(patches, models.SetRole{Value: role})
	}
	if flags.Changed("type") {
		patches = append(patches, models.SetType{Value: recordType})
	}
	if flags.Changed("firefly-id") {
		patches = append(patches, models.SetFireflyID{Value: fireflyID})
	}
	return patches
}
