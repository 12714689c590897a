package domain

import (
	"encoding/base64"
	"strings"
	"sync"

	cryptoDomain "github.com/innwise/fieldvault/internal/crypto/domain"
	"github.com/innwise/fieldvault/internal/errors"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
)

// KeySet holds per-domain secrets loaded from the environment. It backs the
// dev/test key provider; production deployments use the keeper-wrapped
// domain_keys table instead.
//
// Thread safety: the set uses sync.Map internally for concurrent access.
type KeySet struct {
	keys sync.Map
}

// Get returns a private copy of the domain's secret. Callers zero the copy
// after use; the stored secret is unaffected.
func (k *KeySet) Get(domain fieldcryptDomain.RecordDomain) ([]byte, bool) {
	value, ok := k.keys.Load(domain)
	if !ok {
		return nil, false
	}

	stored := value.([]byte)
	secret := make([]byte, len(stored))
	copy(secret, stored)
	return secret, true
}

// Close zeroes every stored secret and resets the set.
func (k *KeySet) Close() {
	k.keys.Range(func(key, value any) bool {
		cryptoDomain.Zero(value.([]byte))
		return true
	})
	k.keys.Clear()
}

// ParseKeySet parses the DOMAIN_KEYS value: comma-separated "domain:base64"
// entries, one per record domain in use.
//
// Format example:
//
//	DOMAIN_KEYS="hr:aHIta2V5LW1hdGVyaWFsLi4u,banking:YmFuay1rZXktbWF0ZXJpYWwu"
//
// Each secret must decode to at least 32 bytes and each domain must be one the
// field policy registry knows; on error the partially built set is closed so
// no secret survives a failed load.
func ParseKeySet(raw string) (*KeySet, error) {
	if raw == "" {
		return nil, errors.Wrap(ErrInvalidKeySet, "no entries")
	}

	keySet := &KeySet{}

	for part := range strings.SplitSeq(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			keySet.Close()
			return nil, errors.Wrapf(ErrInvalidKeySet, "malformed entry %q", part)
		}

		domain := fieldcryptDomain.RecordDomain(p[0])
		if !fieldcryptDomain.ValidDomain(domain) {
			keySet.Close()
			return nil, errors.Wrapf(ErrInvalidKeySet, "unknown domain %q", p[0])
		}

		secret, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			keySet.Close()
			return nil, errors.Wrapf(ErrInvalidKeySet, "invalid base64 for domain %s", p[0])
		}
		if len(secret) < cryptoDomain.MinSecretSize {
			cryptoDomain.Zero(secret)
			keySet.Close()
			return nil, errors.Wrapf(
				ErrInvalidKeySet,
				"secret for domain %s must be at least %d bytes, got %d",
				p[0],
				cryptoDomain.MinSecretSize,
				len(secret),
			)
		}

		keySet.keys.Store(domain, secret)
	}

	return keySet, nil
}
