// Package service opens the secrets keeper that wraps domain keys.
package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	keysDomain "github.com/innwise/fieldvault/internal/keys/domain"

	// Register all keeper provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperService opens keepers for wrapping and unwrapping domain keys.
type KeeperService interface {
	// OpenKeeper opens a secrets.Keeper for the configured provider.
	// Returns an error if the keeper URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keeperURI string) (keysDomain.Keeper, error)
}

// keeperService implements KeeperService using gocloud.dev/secrets.
type keeperService struct{}

// NewKeeperService creates a new keeper service instance.
func NewKeeperService() KeeperService {
	return &keeperService{}
}

// OpenKeeper opens a secrets.Keeper for the configured provider using the keeperURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *keeperService) OpenKeeper(
	ctx context.Context,
	keeperURI string,
) (keysDomain.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
}
