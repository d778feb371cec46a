package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sellerops/wbsync/internal/model"
)

// ErrTenantNotFound is returned when a lookup matches no tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantsRepository defines persistence for seller accounts.
type TenantsRepository interface {
	ListActive(ctx context.Context) ([]model.Tenant, error)
	FindByName(ctx context.Context, name string) (model.Tenant, error)
	Upsert(ctx context.Context, t model.Tenant) error
}

type TenantsRepositoryImpl struct {
	db *sqlx.DB
}

func NewTenantsRepository(db *sqlx.DB) *TenantsRepositoryImpl {
	return &TenantsRepositoryImpl{db: db}
}

// ListActive returns every tenant with a non-empty token, oldest first so
// sync order is stable between runs.
func (r *TenantsRepositoryImpl) ListActive(ctx context.Context) ([]model.Tenant, error) {
	const q = `
		SELECT id, name, token, created_at, updated_at
		FROM tenants
		WHERE token <> ''
		ORDER BY id
	`
	var out []model.Tenant
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TenantsRepositoryImpl) FindByName(ctx context.Context, name string) (model.Tenant, error) {
	const q = `
		SELECT id, name, token, created_at, updated_at
		FROM tenants
		WHERE name = ?
	`
	var t model.Tenant
	err := r.db.GetContext(ctx, &t, q, name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tenant{}, ErrTenantNotFound
	}
	return t, err
}

// Upsert inserts a tenant by name or refreshes its token.
func (r *TenantsRepositoryImpl) Upsert(ctx context.Context, t model.Tenant) error {
	const q = `
		INSERT INTO tenants (name, token, created_at, updated_at)
		VALUES (?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE token = VALUES(token), updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, q, t.Name, t.Token)
	return err
}
