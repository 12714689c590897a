package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
)

// MySQLServiceAccountRepository implements ServiceAccount persistence for MySQL databases.
type MySQLServiceAccountRepository struct {
	db *sql.DB
}

// Create inserts a new service account into the MySQL database.
func (m *MySQLServiceAccountRepository) Create(
	ctx context.Context,
	account *identityDomain.ServiceAccount,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO service_accounts (id, name, secret_hash, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	id, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal service account id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLServiceAccountRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.ServiceAccount, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, secret_hash, is_active, created_at
			  FROM service_accounts
			  WHERE id = ?
			  LIMIT 1`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal service account id")
	}

	var account identityDomain.ServiceAccount
	var rawID []byte

	err = querier.QueryRowContext(ctx, query, binaryID).Scan(
		&rawID,
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

	if err := account.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal service account id")
	}

	return &account, nil
}

// NewMySQLServiceAccountRepository creates a new MySQL ServiceAccount repository instance.
func NewMySQLServiceAccountRepository(db *sql.DB) *MySQLServiceAccountRepository {
	return &MySQLServiceAccountRepository{db: db}
}
