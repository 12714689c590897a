package repository

import (
	"context"
	"database/sql"

	"github.com/innwise/fieldvault/internal/database"
	apperrors "github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"
)

// MySQLDomainKeyRepository implements DomainKey persistence for MySQL databases.
type MySQLDomainKeyRepository struct {
	db *sql.DB
}

// Create inserts a new domain key version into the MySQL database.
func (m *MySQLDomainKeyRepository) Create(
	ctx context.Context,
	key *keysDomain.DomainKey,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO domain_keys (id, domain, version, wrapped_key, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal domain key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLDomainKeyRepository) GetActive(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (*keysDomain.DomainKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, domain, version, wrapped_key, is_active, created_at
			  FROM domain_keys
			  WHERE domain = ? AND is_active = true
			  ORDER BY version DESC
			  LIMIT 1`

	return m.scanKey(querier.QueryRowContext(ctx, query, domain))
}

// GetByVersion retrieves a specific key version for a domain, active or not.
func (m *MySQLDomainKeyRepository) GetByVersion(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
	version uint,
) (*keysDomain.DomainKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, domain, version, wrapped_key, is_active, created_at
			  FROM domain_keys
			  WHERE domain = ? AND version = ?
			  LIMIT 1`

	return m.scanKey(querier.QueryRowContext(ctx, query, domain, version))
}

// Deactivate retires every key version of a domain. Retired versions remain
// stored so older ciphertext can still be unwrapped.
func (m *MySQLDomainKeyRepository) Deactivate(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE domain_keys
			  SET is_active = false
			  WHERE domain = ? AND is_active = true`

	_, err := querier.ExecContext(ctx, query, domain)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate domain keys")
	}
	return nil
}

// MaxVersion returns the highest stored version for a domain, zero when the
// domain has no keys yet.
func (m *MySQLDomainKeyRepository) MaxVersion(
	ctx context.Context,
	domain fieldcryptDomain.RecordDomain,
) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COALESCE(MAX(version), 0) FROM domain_keys WHERE domain = ?`

	var version uint
	if err := querier.QueryRowContext(ctx, query, domain).Scan(&version); err != nil {
		return 0, apperrors.Wrap(err, "failed to get max domain key version")
	}
	return version, nil
}

func (m *MySQLDomainKeyRepository) scanKey(row *sql.Row) (*keysDomain.DomainKey, error) {
	var key keysDomain.DomainKey
	var id []byte

	err := row.Scan(
		&id,
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

	if err := key.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal domain key id")
	}

	return &key, nil
}

// NewMySQLDomainKeyRepository creates a new MySQL DomainKey repository instance.
func NewMySQLDomainKeyRepository(db *sql.DB) *MySQLDomainKeyRepository {
	return &MySQLDomainKeyRepository{db: db}
}
