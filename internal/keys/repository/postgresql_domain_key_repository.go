// Package repository implements domain key persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
)

// PostgreSQLDomainKeyRepository implements DomainKey persistence for PostgreSQL databases.
type PostgreSQLDomainKeyRepository struct {
	db *sql.DB
}

// Create inserts a new domain key version into the PostgreSQL database.
func (p *PostgreSQLDomainKeyRepository) Create(
	ctx context.Context,
	key *keysDomain.DomainKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO domain_keys (id, domain, version, wrapped_key, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Domain,
		key.Version,
		key.WrappedKey,
		key.IsActive,
		key.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create domain key")
	}
	return nil
}

// GetActive retrieves the active key version for a domain.
func (p *PostgreSQLDomainKeyRepository) GetActive(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (*keysDomain.DomainKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, domain, version, wrapped_key, is_active, created_at
			  FROM domain_keys
			  WHERE domain = $1 AND is_active = true
			  ORDER BY version DESC
			  LIMIT 1`

	return p.scanKey(querier.QueryRowContext(ctx, query, domain))
}

// GetByVersion retrieves a specific key version for a domain, active or not.
func (p *PostgreSQLDomainKeyRepository) GetByVersion(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
	version uint,
) (*keysDomain.DomainKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, domain, version, wrapped_key, is_active, created_at
			  FROM domain_keys
			  WHERE domain = $1 AND version = $2
			  LIMIT 1`

	return p.scanKey(querier.QueryRowContext(ctx, query, domain, version))
}

// Deactivate retires every key version of a domain. Retired versions remain
// stored so older ciphertext can still be unwrapped.
func (p *PostgreSQLDomainKeyRepository) Deactivate(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE domain_keys
			  SET is_active = false
			  WHERE domain = $1 AND is_active = true`

	_, err := querier.ExecContext(ctx, query, domain)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate domain keys")
	}
	return nil
}

// MaxVersion returns the highest stored version for a domain, zero when the
// domain has no keys yet.
func (p *PostgreSQLDomainKeyRepository) MaxVersion(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM domain_keys WHERE domain = $1`

	var version uint
	if err := querier.QueryRowContext(ctx, query, domain).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max domain key version")
	}
	return version, nil
}

func (p *PostgreSQLDomainKeyRepository) scanKey(row *sql.Row) (*keysDomain.DomainKey, error) {
	var key keysDomain.DomainKey
	err := row.Scan(
		&key.ID,
		&key.Domain,
		&key.Version,
		&key.WrappedKey,
		&key.IsActive,
		&key.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get domain key")
	}
	return &key, nil
}

// NewPostgreSQLDomainKeyRepository creates a new PostgreSQL DomainKey repository instance.
func NewPostgreSQLDomainKeyRepository(db *sql.DB) *PostgreSQLDomainKeyRepository {
	return &PostgreSQLDomainKeyRepository{db: db}
}
