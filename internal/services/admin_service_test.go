package services

import (
	"context"
	"testing"
	"time"

	"github.com/agamariel/cocapremium/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Login(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc := NewAdminService("admin", hash, "jwt", time.Hour)
		token, err := svc.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)

		claims, err := auth.ValidateToken(token, "jwt")
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Login)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAdminService("admin", hash, "jwt", time.Hour)
		_, err := svc.Login(ctx, "admin", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong login", func(t *testing.T) {
		svc := NewAdminService("admin", hash, "jwt", time.Hour)
		_, err := svc.Login(ctx, "root", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewAdminService("admin", "", "jwt", time.Hour)
		_, err := svc.Login(ctx, "admin", "")
		assert.ErrorIs(t, err, ErrAdminDisabled)
	})
}
