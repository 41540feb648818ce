// Package directory manages the local catalog of reusable clients and the
// issuing business profile backed by SQLite.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avaldez/proforma/internal/db"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/repository"
	"github.com/google/uuid"
)

// Service exposes directory operations. Reads go straight to the
// database; writes run inside a transaction so multi-step upserts stay
// atomic.
type Service struct {
	db  *sql.DB
	uow db.UnitOfWork
}

func NewService(database *sql.DB) *Service {
	return &Service{
		db:  database,
		uow: db.NewSQLiteUnitOfWork(database),
	}
}

// NewServiceWithUoW allows injecting a custom UnitOfWork, used by tests
// to simulate mid-transaction failures.
func NewServiceWithUoW(database *sql.DB, uow db.UnitOfWork) *Service {
	return &Service{db: database, uow: uow}
}

// SaveClient stores a client, reconciling by identifier first and tax id
// second so re-saving the same business never duplicates it. The stored
// record is returned with its definitive identifier.
func (s *Service) SaveClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	if c.Name == "" {
		return domain.Client{}, fmt.Errorf("client name is required")
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteClientRepo(tx)

		if c.ID != "" {
			c2 := c
			if err := repo.Update(ctx, &c2); err == nil {
				return nil
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			// Unknown identifier, fall through to tax id reconciliation.
		}

		if c.TaxID != "" {
			existing, err := repo.GetByTaxID(ctx, c.TaxID)
			if err == nil {
				c.ID = existing.ID
				return repo.Update(ctx, &c)
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}

		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		return repo.Create(ctx, &c)
	})
	if err != nil {
		return domain.Client{}, fmt.Errorf("saving client: %w", err)
	}
	return c, nil
}

// FindClient resolves a client by exact identifier, then by exact tax id,
// then by a name search that must match exactly one record.
func (s *Service) FindClient(ctx context.Context, ref string) (domain.Client, error) {
	repo := repository.NewSQLiteClientRepo(s.db)

	if c, err := repo.GetByID(ctx, ref); err == nil {
		return *c, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, err
	}

	if c, err := repo.GetByTaxID(ctx, ref); err == nil {
		return *c, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, err
	}

	matches, err := repo.Search(ctx, ref)
	if err != nil {
		return domain.Client{}, err
	}
	switch len(matches) {
	case 0:
		return domain.Client{}, fmt.Errorf("client %q: %w", ref, repository.ErrNotFound)
	case 1:
		return *matches[0], nil
	default:
		return domain.Client{}, fmt.Errorf("client %q is ambiguous: %d matches", ref, len(matches))
	}
}

func (s *Service) SearchClients(ctx context.Context, query string) ([]*domain.Client, error) {
	return repository.NewSQLiteClientRepo(s.db).Search(ctx, query)
}

func (s *Service) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return repository.NewSQLiteClientRepo(s.db).List(ctx)
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteClientRepo(tx).Delete(ctx, id)
	})
}

// IssuerProfile returns the stored issuing identity. The second return
// value is false when none has been configured yet.
func (s *Service) IssuerProfile(ctx context.Context) (domain.Issuer, bool, error) {
	issuer, err := repository.NewSQLiteIssuerProfileRepo(s.db).Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Issuer{}, false, nil
		}
		return domain.Issuer{}, false, err
	}
	return *issuer, true, nil
}

func (s *Service) SaveIssuerProfile(ctx context.Context, issuer domain.Issuer) error {
	if issuer.Name == "" {
		return fmt.Errorf("issuer name is required")
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteIssuerProfileRepo(tx).Upsert(ctx, &issuer)
	})
}
