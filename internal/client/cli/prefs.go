package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fireflow/internal/client/kvstore"
	"github.com/dmitrijs2005/fireflow/internal/client/preferences"
	"github.com/dmitrijs2005/fireflow/internal/client/usecases"
	"github.com/dmitrijs2005/fireflow/internal/common"
)

const notSet = "(not set)"

func parsePreference(args []string) (usecases.Preference, error) {
	tier, err := preferences.ParseTier(args[0])
	if err != nil {
		return usecases.Preference{}, err
	}
	kind, err := kvstore.ParseKind(args[1])
	if err != nil {
		return usecases.Preference{}, err
	}
	return usecases.Preference{Tier: tier, Kind: kind, Key: args[2]}, nil
}

func prefsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write preferences",
		Long: "Preferences live in three tiers: secured (encrypted at rest), standard and development.\n" +
			"Each key holds one value per kind: bool, int, long, float or string.",
	}
	cmd.AddCommand(
		prefGetCmd(rt),
		prefHasCmd(rt),
		prefSetCmd(rt),
		prefRemoveCmd(rt),
		prefClearCmd(rt),
		prefWatchCmd(rt),
		prefStatusCmd(rt),
	)
	return cmd
}

func prefGetCmd(rt *runtime) *cobra.Command {
	var def string
	cmd := &cobra.Command{
		Use:   "get <tier> <kind> <key>",
		Short: "Print a preference value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePreference(args)
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			v, err := rt.app.uc.GetPreference.Invoke(ctx, p)
			if errors.Is(err, common.ErrPreferenceNotFound) && cmd.Flags().Changed("default") {
				v, err = def, nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVar(&def, "default", "", "value printed when the preference is not set")
	return cmd
}

func prefHasCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "has <tier> <kind> <key>",
		Short: "Report whether a preference is set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePreference(args)
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			ok, err := rt.app.uc.ContainsPreference.Invoke(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func prefSetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set <tier> <kind> <key> <value>",
		Short: "Store a preference value",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePreference(args)
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.SavePreference.Invoke(ctx, p, args[3])
		},
	}
}

func prefRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <tier> <kind> <key>",
		Aliases: []string{"remove"},
		Short:   "Remove a preference value",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePreference(args)
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.RemovePreference.Invoke(ctx, p)
		},
	}
}

func prefClearCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <tier>",
		Short: "Remove every preference of a tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := preferences.ParseTier(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := rt.app.opContext(cmd.Context())
			defer cancel()

			return rt.app.uc.RemovePreference.All(ctx, tier)
		},
	}
}

// prefWatchCmd prints the value and then every change until interrupted.
func prefWatchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <tier> <kind> <key>",
		Short: "Print a preference value and every later change",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePreference(args)
			if err != nil {
				return err
			}
			for r := range rt.app.uc.GetPreference.Watch(cmd.Context(), p) {
				switch {
				case errors.Is(r.Err, common.ErrPreferenceNotFound):
					fmt.Fprintln(cmd.OutOrStdout(), notSet)
				case r.Err != nil:
					return r.Err
				default:
					fmt.Fprintln(cmd.OutOrStdout(), r.Value)
				}
			}
			return nil
		},
	}
}

func prefStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how the secured tier is stored",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			state := "encrypted"
			if rt.app.stores.SecuredDegraded() {
				state = "fallback (no key available)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "secured: %s\n", state)
			fmt.Fprintf(cmd.OutOrStdout(), "development: %s\n", rt.app.config.DevelopmentBackend)
		},
	}
}
