package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/unimatch/internal/result"
)

func newExportCmd(o *options) *cobra.Command {
	var pf profileFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write recommendations for a profile to a workbook",
		Long: `Submit a profile and save the preferred and alternative
recommendations as an .xlsx workbook.

Examples:
  unimatch export --profile me.yaml --out recs.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context(), o.logOut)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := submitProfile(cmd, a, &pf)
			if err != nil {
				if isInvalid(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), result.Render(s.Result(), result.NewStyles(false), s.Printer()))
				}
				return err
			}

			rec, ok := s.Result().Latest()
			if !ok {
				return errors.New("the service returned no recommendations")
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := result.ExportWorkbook(f, rec, s.Printer()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d recommendations to %s\n", len(rec.Preferred)+len(rec.Alternatives), out)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "recommendations.xlsx", "output workbook path")
	return cmd
}
