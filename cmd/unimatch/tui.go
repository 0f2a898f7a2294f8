package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/platform/logging"
	"github.com/p-n-ai/unimatch/internal/tui"
)

func newTUICmd(o *options) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive form",
		Long: `Open the full-screen form. Logs go to UNIMATCH_LOG_FILE, or are
discarded when it is unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			logFile, err := logging.OpenFile(cfg.Log.File)
			if err != nil {
				return err
			}
			defer logFile.Close()

			ctx := cmd.Context()
			a, err := o.open(ctx, logFile)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.NewSession(a.Prefs(""), true)
			s.Start(ctx)
			if profile != "" {
				p, err := form.LoadProfile(profile)
				if err != nil {
					return err
				}
				if err := s.ApplyProfile(p); err != nil {
					return fmt.Errorf("applying profile: %w", err)
				}
			}

			_, err = tea.NewProgram(tui.New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "prefill the form from a YAML profile")
	return cmd
}
