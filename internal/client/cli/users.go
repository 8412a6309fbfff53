package cli

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fireflow/internal/client/models"
	"github.com/dmitrijs2005/fireflow/internal/common"
)

func usersCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage signed-in users",
	}
	cmd.AddCommand(
		usersListCmd(rt),
		usersCurrentCmd(rt),
		usersLocalCmd(rt),
		usersLoginCmd(rt),
		usersCompleteCmd(rt),
		usersSwitchCmd(rt),
		usersUpdateCmd(rt),
		usersTokenCmd(rt),
		usersLogoutCmd(rt),
		usersDeleteCmd(rt),
		usersPruneCmd(rt),
		usersWatchCmd(rt),
	)
	return cmd
}

func usersListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			all, err := rt.app.uc.GetUsers.Invoke(ctx)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), all)
		},
	}
}

func usersCurrentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			u, err := rt.app.uc.GetCurrentUser.Invoke(ctx)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), []models.User{u})
		},
	}
}

func usersLocalCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "Create a local user that is not bound to a server and make it current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			id, err := rt.app.uc.SaveUser.Invoke(ctx, models.User{IsCurrent: true})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d saved\n", id)
			return nil
		},
	}
}

func usersLoginCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "login <server> <client-id> <client-secret>",
		Short: "Start an OAuth login and print its state token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			id, state, err := rt.app.uc.BeginUserLogin.Invoke(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pending user %d\nstate: %s\n", id, state)
			return nil
		},
	}
}

// usersCompleteCmd finishes a login started with "users login": the pending
// row is replaced by a current user carrying the token and the profile.
func usersCompleteCmd(rt *runtime) *cobra.Command {
	var token, refresh, identifier, email string
	cmd := &cobra.Command{
		Use:   "complete <state>",
		Short: "Finish a pending login with the tokens returned by the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				pw, err := GetPassword(cmd.ErrOrStderr(), "Access token")
				if err != nil {
					return err
				}
				token = string(pw)
			}
			if identifier == "" {
				var err error
				identifier, err = GetSimpleText(bufio.NewReader(cmd.InOrStdin()), "Profile identifier", cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			pending, err := rt.app.uc.GetUserByState.Invoke(ctx, args[0])
			if err != nil {
				return err
			}
			creds := models.CredentialsOf(pending.Auth)
			creds.AccessToken = token
			creds.RefreshToken = refresh

			done := pending
			done.ID = 0
			done.State = ""
			done.IsCurrent = true
			done.Auth = models.AuthenticationFromCredentials(creds)
			done.Identifier = identifier
			done.Email = email

			id, err := rt.app.uc.SaveUser.Invoke(ctx, done)
			if err != nil {
				return err
			}
			if err := rt.app.uc.DeleteUser.Invoke(ctx, pending.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d signed in\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token (prompted when empty)")
	cmd.Flags().StringVar(&refresh, "refresh-token", "", "refresh token")
	cmd.Flags().StringVar(&identifier, "identifier", "", "profile identifier on the server (prompted when empty)")
	cmd.Flags().StringVar(&email, "email", "", "email")
	return cmd
}

func usersSwitchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id>",
		Short: "Make another user current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.SetNewCurrentUser.Invoke(ctx, id)
		},
	}
}

func usersUpdateCmd(rt *runtime) *cobra.Command {
	var email, role, userType, fireflyID string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change fields of the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patches := profilePatches(cmd, email, role, userType, fireflyID)
			if len(patches) == 0 {
				return fmt.Errorf("nothing to update")
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.UpdateCurrentUser.Invoke(ctx, patches...)
		},
	}
	profileFlags(cmd, &email, &role, &userType, &fireflyID)
	return cmd
}

func usersTokenCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the access token of the current user and its expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			token, err := rt.app.uc.GetCurrentUserAccessToken.Invoke(ctx)
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no access token")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)

			exp, ok, err := rt.app.uc.GetCurrentUserTokenExpiry.Invoke(ctx)
			switch {
			case err != nil:
				fmt.Fprintln(cmd.OutOrStdout(), "expires: unknown (opaque token)")
			case !ok:
				fmt.Fprintln(cmd.OutOrStdout(), "expires: never")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "expires: %s\n", exp.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func usersLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Leave the current user signed out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.LogOut.Invoke(ctx)
		},
	}
}

func usersDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.DeleteUser.Invoke(ctx, id)
		},
	}
}

func usersPruneCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete users of abandoned logins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.RemoveStaleUsers.Invoke(ctx)
		},
	}
}

func usersWatchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the current user and every later change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for r := range rt.app.uc.GetCurrentUser.Observe(cmd.Context()) {
				switch {
				case errors.Is(r.Err, common.ErrNoCurrentUser):
					fmt.Fprintln(cmd.OutOrStdout(), "no current user")
				case r.Err != nil:
					return r.Err
				default:
					fmt.Fprintln(cmd.OutOrStdout(), r.Value.Identification())
				}
			}
			return nil
		},
	}
}
