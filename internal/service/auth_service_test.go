package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/repository"
)

func TestAuthWithoutPassword(t *testing.T) {
	svc, err := NewAuthService(config.AuthConfig{JWTSecret: "s"}, repository.NewMemorySessionRepository(), nil)
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	sid, err := svc.Authenticate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultSession, sid)
}

func TestAuthLoginLogout(t *testing.T) {
	cfg := config.AuthConfig{AppPassword: "vardast", JWTSecret: "s", BcryptCost: 4, SessionTTLMinutes: 30}
	svc, err := NewAuthService(cfg, repository.NewMemorySessionRepository(), nil)
	require.NoError(t, err)
	require.True(t, svc.Enabled())
	ctx := context.Background()

	_, _, err = svc.Login(ctx, "wrong")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))

	token, _, err := svc.Login(ctx, "vardast")
	require.NoError(t, err)
	sid, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, auth.DefaultSession, sid)

	require.NoError(t, svc.Logout(ctx, sid))
	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, "UNAUTHORIZED", errCode(err))

	_, err = svc.Authenticate(ctx, "not-a-jwt")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}
