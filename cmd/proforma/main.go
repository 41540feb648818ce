package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/avaldez/proforma/internal/assistant"
	"github.com/avaldez/proforma/internal/cli"
	"github.com/avaldez/proforma/internal/db"
	"github.com/avaldez/proforma/internal/directory"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/export"
	"github.com/avaldez/proforma/internal/persist"
	"github.com/avaldez/proforma/internal/session"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.proforma/proforma.db
	dbPath := os.Getenv("PROFORMA_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".proforma", "proforma.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	dir := directory.NewService(database)

	// Collaborator clients, all configured through the environment.
	aiCfg := assistant.LoadConfig()
	var aiClient assistant.Client
	if aiCfg.Enabled {
		var observer assistant.Observer
		if aiCfg.LogCalls {
			observer = assistant.NewLogObserver(os.Stderr)
		}
		aiClient = assistant.NewHTTPClient(aiCfg, observer)
	}
	persistClient := persist.NewHTTPClient(persist.LoadConfig())
	exportClient := export.NewHTTPClient(export.LoadConfig())

	var sessionLog io.Writer
	if os.Getenv("PROFORMA_VERBOSE") != "" {
		sessionLog = os.Stderr
	}
	observer := session.NewLogUseCaseObserver(sessionLog)

	deps := session.Clients{
		Assistant: aiClient,
		Persist:   persistClient,
		Exporter:  exportClient,
		Directory: dir,
	}
	opts := session.Options{Observer: observer}

	issuerDefaults := func(s *session.Session) *session.Session {
		// Pre-fill the issuer block from the stored profile, if any.
		if issuer, ok, err := dir.IssuerProfile(context.Background()); err == nil && ok {
			_, _ = s.Edit(context.Background(), domain.DraftPatch{Issuer: &domain.IssuerPatch{
				Name:    &issuer.Name,
				TaxID:   &issuer.TaxID,
				Address: &issuer.Address,
				LogoRef: &issuer.LogoRef,
			}})
		}
		return s
	}

	app := &cli.App{
		NewSession: func(kind domain.DocumentKind) *session.Session {
			return issuerDefaults(session.New(kind, deps, opts))
		},
		ResumeSession: func(ctx context.Context, id string) (*session.Session, error) {
			return session.Resume(ctx, id, deps, opts)
		},
		Directory:   dir,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		Out:         os.Stdout,
	}

	return cli.NewRootCmd(app).Execute()
}
