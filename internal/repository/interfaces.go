package repository

import (
	"context"
	"errors"

	"github.com/avaldez/proforma/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ClientRepo stores the reusable client directory.
type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error)
	Search(ctx context.Context, query string) ([]*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// IssuerProfileRepo stores the single issuing business identity.
type IssuerProfileRepo interface {
	Get(ctx context.Context) (*domain.Issuer, error)
	Upsert(ctx context.Context, issuer *domain.Issuer) error
}
