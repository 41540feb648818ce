package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avaldez/proforma/internal/db"
	"github.com/avaldez/proforma/internal/domain"
)

// SQLiteIssuerProfileRepo implements IssuerProfileRepo using a SQLite database.
type SQLiteIssuerProfileRepo struct {
	db db.DBTX
}

func NewSQLiteIssuerProfileRepo(conn db.DBTX) *SQLiteIssuerProfileRepo {
	return &SQLiteIssuerProfileRepo{db: conn}
}

func (r *SQLiteIssuerProfileRepo) Get(ctx context.Context) (*domain.Issuer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, tax_id, address, logo_ref FROM issuer_profile WHERE id = 1`)

	var issuer domain.Issuer
	err := row.Scan(&issuer.Name, &issuer.TaxID, &issuer.Address, &issuer.LogoRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("issuer profile: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning issuer profile: %w", err)
	}
	return &issuer, nil
}

func (r *SQLiteIssuerProfileRepo) Upsert(ctx context.Context, issuer *domain.Issuer) error {
	query := `INSERT OR REPLACE INTO issuer_profile (id, name, tax_id, address, logo_ref, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, issuer.Name, issuer.TaxID, issuer.Address, issuer.LogoRef, nowUTC())
	if err != nil {
		return fmt.Errorf("upserting issuer profile: %w", err)
	}
	return nil
}
