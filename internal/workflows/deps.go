package workflows

import (
	"github.com/capsulecli/capsule/internal/configs"
	"github.com/capsulecli/capsule/internal/envelope"
	"github.com/capsulecli/capsule/internal/keyring"
	"github.com/capsulecli/capsule/internal/keystore"
	logger "github.com/capsulecli/capsule/internal/logging"
	"github.com/capsulecli/capsule/internal/resolver"
)

// newStore returns the registry store rooted at the user data directory.
func newStore() *keystore.Store {
	return keystore.NewStore(configs.UserCapsuleSettings.UserDataPath)
}

// newCodec returns an envelope codec over the user's registry.
func newCodec(store *keystore.Store) *envelope.Codec {
	return &envelope.Codec{
		Store:  store,
		PGP:    envelope.OpenPGP{},
		Logger: logger.Logger{},
	}
}

// newResolver returns a directory resolver configured from the user's
// settings.
func newResolver(store *keystore.Store) (*resolver.Resolver, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	return resolver.New(store, config, logger.Logger{}), nil
}

// newBridge returns a keyring bridge configured from the user's settings.
func newBridge() (*keyring.Bridge, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	return keyring.NewBridge(config, logger.Logger{}), nil
}
