package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avaldez/proforma/internal/db"
	"github.com/avaldez/proforma/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

const clientColumns = `id, name, tax_id, address, phone, email`

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, name, tax_id, address, phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := nowUTC()
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email, now, now)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *SQLiteClientRepo) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	if taxID == "" {
		return nil, fmt.Errorf("client: empty tax id: %w", ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE tax_id = ?`, taxID)
	return scanClient(row)
}

// Search matches name, tax id and email with a case-insensitive substring.
func (r *SQLiteClientRepo) Search(ctx context.Context, query string) ([]*domain.Client, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients
		WHERE name LIKE ? COLLATE NOCASE OR tax_id LIKE ? OR email LIKE ? COLLATE NOCASE
		ORDER BY name`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching clients: %w", err)
	}
	defer rows.Close()
	return collectClients(rows)
}

func (r *SQLiteClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()
	return collectClients(rows)
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = ?, tax_id = ?, address = ?, phone = ?, email = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.TaxID, c.Address, c.Phone, c.Email, nowUTC(), c.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanClient(row *sql.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	return &c, nil
}

func collectClients(rows *sql.Rows) ([]*domain.Client, error) {
	var out []*domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email); err != nil {
			return nil, fmt.Errorf("scanning client row: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return out, nil
}
