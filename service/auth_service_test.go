package service

import (
	"secure-bank-api/model"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_ParseToken(t *testing.T) {
	auth := NewAuthService("test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := auth.IssueToken(42, model.RoleAdmin, time.Hour)
		require.NoError(t, err)

		claims, err := auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := auth.IssueToken(42, model.RoleUser, -time.Minute)
		require.NoError(t, err)

		_, err = auth.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewAuthService("other").IssueToken(42, model.RoleUser, time.Hour)
		require.NoError(t, err)

		_, err = auth.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := auth.IssueToken(42, model.Role("root"), time.Hour)
		require.NoError(t, err)

		_, err = auth.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &model.AppClaims{UserID: 1, Role: "admin"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = auth.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
