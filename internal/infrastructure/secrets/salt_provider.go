// Package secrets resolves the origin-hash salt from its configured
// source. The salt is resolved once at startup and passed into the quota
// subsystem as plain configuration; nothing re-reads it at runtime, so a
// rotation requires a restart (and silently resets all origin counters).
package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/logger"
)

// saltField is the key inside the Vault KV secret holding the salt value.
const saltField = "salt"

// ResolveOriginSalt returns the salt for network-address hashing.
// Resolution order: Vault (when enabled, failures are fatal), then static
// configuration, then the fixed development default with a loud warning.
// An unsalted hash is never produced.
func ResolveOriginSalt(ctx context.Context, cfg *config.Config, log logger.Logger) (string, error) {
	if cfg.Vault.Enabled {
		salt, err := fetchVaultSalt(ctx, &cfg.Vault)
		if err != nil {
			return "", fmt.Errorf("vault is enabled but the origin salt could not be read: %w", err)
		}
		log.Info(ctx, "origin salt loaded from Vault",
			logger.String("path", cfg.Vault.SaltPath),
		)
		return salt, nil
	}

	if cfg.Quota.OriginSalt != "" {
		return cfg.Quota.OriginSalt, nil
	}

	log.Warn(ctx, "no origin salt configured, falling back to the built-in development salt; "+
		"set quota.origin_salt or enable vault before deploying")
	return constants.DevelopmentOriginSalt, nil
}

func fetchVaultSalt(ctx context.Context, cfg *config.VaultConfig) (string, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return "", err
	}
	client.SetToken(cfg.Token)

	secret, err := client.KVv2(cfg.MountPath).Get(ctx, cfg.SaltPath)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret at %s/%s", cfg.MountPath, cfg.SaltPath)
	}

	salt, ok := secret.Data[saltField].(string)
	if !ok || salt == "" {
		return "", fmt.Errorf("secret at %s/%s has no %q field", cfg.MountPath, cfg.SaltPath, saltField)
	}
	return salt, nil
}
