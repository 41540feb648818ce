package cli

import (
	"context"
	"io"
	"strings"

	"github.com/avaldez/proforma/internal/directory"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds the wiring CLI commands need: session construction and the
// local client directory.
type App struct {
	NewSession    func(kind domain.DocumentKind) *session.Session
	ResumeSession func(ctx context.Context, id string) (*session.Session, error)
	Directory     *directory.Service
	Interactive   bool
	Out           io.Writer
}

// NewRootCmd creates the top-level "proforma" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "proforma",
		Short:         "Assisted builder for quotes, project proposals and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Accept flags case-insensitively (--RUC and --ruc are the same).
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ToLower(name))
	})

	root.AddCommand(
		newNewCmd(app),
		newOpenCmd(app),
		newClientCmd(app),
		newIssuerCmd(app),
		newExportCmd(app),
	)

	return root
}
