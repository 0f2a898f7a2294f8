package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/unimatch/internal/app"
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/platform/config"
	"github.com/p-n-ai/unimatch/internal/platform/logging"
	"github.com/p-n-ai/unimatch/internal/session"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	apiBase string
	locale  string
	logOut  io.Writer
}

func newRootCmd() *cobra.Command {
	o := &options{logOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "unimatch",
		Short: "Estimate admission chances for university and major choices",
		Long: `UniMatch collects report-card grades and up to three
university/major choices, asks the prediction service for an admission
probability and shows recommended alternatives.

Configuration comes from UNIMATCH_* environment variables; the flags
below override the most common ones.

Examples:
  unimatch tui
  unimatch predict --profile me.yaml
  unimatch predict --profile me.yaml --import rapor.xlsx --save
  unimatch export --profile me.yaml --out recs.xlsx
  unimatch theme dark`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&o.apiBase, "api", "", "prediction service base URL (overrides UNIMATCH_API_BASE)")
	cmd.PersistentFlags().StringVar(&o.locale, "locale", "", "message language, id or en (overrides UNIMATCH_LOCALE)")

	cmd.AddCommand(
		newTUICmd(o),
		newPredictCmd(o),
		newExportCmd(o),
		newThemeCmd(o),
	)
	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.apiBase != "" {
		cfg.API.BaseURL = o.apiBase
	}
	if o.locale != "" {
		cfg.Locale = o.locale
	}
	return cfg, nil
}

// open loads the configuration, installs the logger and connects backends.
func (o *options) open(ctx context.Context, logOut io.Writer) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(cfg.Log, logOut))
	return app.Open(ctx, cfg)
}

// profileFlags are shared by predict and export.
type profileFlags struct {
	profile  string
	workbook string
	save     bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "YAML profile with grades and choices")
	cmd.Flags().StringVar(&f.workbook, "import", "", "read grades from a report-card workbook (.xlsx)")
	cmd.Flags().BoolVar(&f.save, "save", false, "write imported grades back to the profile")
	_ = cmd.MarkFlagRequired("profile")
}

// loadInto applies the profile and optional workbook to a started session.
func (f *profileFlags) loadInto(s *session.Session) error {
	p, err := form.LoadProfile(f.profile)
	if err != nil {
		return err
	}
	if err := s.ApplyProfile(p); err != nil {
		return fmt.Errorf("applying profile: %w", err)
	}
	if f.workbook == "" {
		return nil
	}

	wb, err := os.Open(f.workbook)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	fields, err := form.ImportWorkbook(wb, s.Form())
	if err != nil {
		return err
	}
	slog.Info("imported grades", "file", f.workbook, "fields", len(fields))

	if f.save {
		if err := form.SaveProfile(f.profile, s.Profile()); err != nil {
			return err
		}
	}
	return nil
}
