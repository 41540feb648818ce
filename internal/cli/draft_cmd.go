package cli

import (
	"fmt"
	"os"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/export"
	"github.com/spf13/cobra"
)

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "new [quote|project|report]",
		Short:     "Start a new draft in the interactive shell",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"quote", "project", "report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := domain.KindQuote
			if len(args) == 1 {
				kind = domain.DocumentKind(args[0])
				if !domain.ValidDocumentKinds[kind] {
					return fmt.Errorf("unknown document kind %q", args[0])
				}
			}
			if !app.Interactive {
				return fmt.Errorf("the draft shell needs an interactive terminal")
			}
			return runShell(app, app.NewSession(kind))
		},
	}
}

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <draft-id>",
		Short: "Resume a previously saved draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Interactive {
				return fmt.Errorf("the draft shell needs an interactive terminal")
			}
			sess, err := app.ResumeSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return runShell(app, sess)
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <draft-id>",
		Short: "Render a saved draft to PDF or Word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.ResumeSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer sess.End(cmd.Context())

			doc, filename, err := sess.Export(cmd.Context(), export.Format(format))
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = filename
			}
			if err := os.WriteFile(outPath, doc, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(app.Out, "wrote %s (%d bytes)\n", outPath, len(doc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "output format (pdf or docx)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (defaults to a generated name)")
	return cmd
}
