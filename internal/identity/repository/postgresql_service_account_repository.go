// Package repository implements service-account persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
)

// PostgreSQLServiceAccountRepository implements ServiceAccount persistence for PostgreSQL databases.
type PostgreSQLServiceAccountRepository struct {
	db *sql.DB
}

// Create inserts a new service account into the PostgreSQL database.
func (p *PostgreSQLServiceAccountRepository) Create(
	ctx context.Context,
	account *identityDomain.ServiceAccount,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO service_accounts (id, name, secret_hash, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.ID,
		account.Name,
		account.SecretHash,
		account.IsActive,
		account.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create service account")
	}
	return nil
}

// Get retrieves a service account by ID.
func (p *PostgreSQLServiceAccountRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.ServiceAccount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret_hash, is_active, created_at
			  FROM service_accounts
			  WHERE id = $1
			  LIMIT 1`

	var account identityDomain.ServiceAccount
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.SecretHash,
		&account.IsActive,
		&account.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get service account")
	}

	return &account, nil
}

// NewPostgreSQLServiceAccountRepository creates a new PostgreSQL ServiceAccount repository instance.
func NewPostgreSQLServiceAccountRepository(db *sql.DB) *PostgreSQLServiceAccountRepository {
	return &PostgreSQLServiceAccountRepository{db: db}
}
