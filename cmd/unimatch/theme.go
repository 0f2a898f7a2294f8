package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/unimatch/internal/prefs"
)

func newThemeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		ValidArgs: []string{string(prefs.Light), string(prefs.Dark)},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			store := prefs.NewFileStore(cfg.Prefs.Path)
			ctx := cmd.Context()

			if len(args) == 1 {
				t, err := prefs.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := store.SetTheme(ctx, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), prefs.Resolve(ctx, store, nil))
			return nil
		},
	}
}
