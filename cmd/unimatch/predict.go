package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/unimatch/internal/app"
	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/session"
)

var errNoResult = errors.New("no prediction")

func newPredictCmd(o *options) *cobra.Command {
	var pf profileFlags
	var plain bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict admission chances for a saved profile",
		Long: `Submit a profile to the prediction service and print the
probability, tips and recommendation tables.

Examples:
  unimatch predict --profile me.yaml
  unimatch predict -p me.yaml --import rapor.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context(), o.logOut)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := submitProfile(cmd, a, &pf)
			if err == nil || isInvalid(err) || errors.Is(err, errNoResult) {
				styles := result.NewStyles(s.Theme().IsDark() && !plain)
				fmt.Fprintln(cmd.OutOrStdout(), result.Render(s.Result(), styles, s.Printer()))
			}
			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "always use the light palette")
	return cmd
}

// submitProfile starts a session, loads the profile and submits it. The
// returned session is non-nil whenever the profile loaded, so callers can
// render issues and errors.
func submitProfile(cmd *cobra.Command, a *app.App, pf *profileFlags) (*session.Session, error) {
	ctx := cmd.Context()
	s := a.NewSession(a.Prefs(""), false)
	s.Start(ctx)

	if err := pf.loadInto(s); err != nil {
		return s, err
	}
	if err := s.Submit(ctx); err != nil {
		return s, err
	}
	if st := s.Result().State(); st.Prediction == nil {
		return s, fmt.Errorf("%w: %s", errNoResult, st.Error)
	}
	return s, nil
}

// isInvalid reports whether err came from form validation.
func isInvalid(err error) bool {
	return errors.Is(err, session.ErrInvalid)
}
