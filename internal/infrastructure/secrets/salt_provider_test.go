package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/logger"
)

func TestResolveOriginSalt_FromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Quota.OriginSalt = "configured-secret"

	salt, err := ResolveOriginSalt(context.Background(), cfg, logger.NewNoop())
	require.NoError(t, err)
	assert.Equal(t, "configured-secret", salt)
}

func TestResolveOriginSalt_DevelopmentFallback(t *testing.T) {
	cfg := &config.Config{}

	salt, err := ResolveOriginSalt(context.Background(), cfg, logger.NewNoop())
	require.NoError(t, err)
	assert.Equal(t, constants.DevelopmentOriginSalt, salt, "missing salt falls back to the fixed default, never unsalted")
}

func TestResolveOriginSalt_VaultUnreachableFailsLoud(t *testing.T) {
	cfg := &config.Config{}
	cfg.Vault.Enabled = true
	cfg.Vault.Address = "http://127.0.0.1:1" // nothing listens here
	cfg.Vault.MountPath = "secret"
	cfg.Vault.SaltPath = "curelink/origin-salt"

	_, err := ResolveOriginSalt(context.Background(), cfg, logger.NewNoop())
	assert.Error(t, err)
}
