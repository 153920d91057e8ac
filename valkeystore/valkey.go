// Package valkeystore keeps tokens and installations in Valkey so they survive
// restarts and can be shared between replicas.
package valkeystore

import (
	"fmt"

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/valkey-io/valkey-go"
)

const (
	accessTokenPrefix  = "crm:access:"
	refreshTokenPrefix = "crm:refresh:"
	installationPrefix = "crm:installation:"
	installationIndex  = "crm:installations"
)

// Connect opens a client against the configured address
func Connect(cfg config.StoreConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.GetValkeyAddress()},
	})
	if err != nil {
		return nil, fmt.Errorf("[valkeystore Connect] %s: %w", cfg.GetValkeyAddress(), err)
	}
	return client, nil
}
