package handler

import (
	"context"
	"net/http"
	"secure-bank-api/common"
	"secure-bank-api/model"
	"strings"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	UserRoleKey contextKey = "userRole"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(tokenString string) (*model.AppClaims, error)
}

// AuthMiddleware puts the caller's id and role into the request context.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.NewAppError(http.StatusUnauthorized, "Unauthorized", "Authorization header is required", nil).Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				common.NewAppError(http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format", nil).Send(w)
				return
			}

			claims, err := tokens.ParseToken(headerParts[1])
			if err != nil {
				common.NewAppError(http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", err).Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleKey).(string)
		if !ok || model.Role(role) != model.RoleAdmin {
			common.NewAppError(http.StatusForbidden, "PermissionDenied", "Access denied. Admin privileges required.", nil).Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requesterFrom reads the identity AuthMiddleware stored.
func requesterFrom(r *http.Request) (model.Requester, *common.AppError) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	if !ok {
		return model.Requester{}, common.NewAppError(http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token", nil)
	}
	role, ok := r.Context().Value(UserRoleKey).(string)
	if !ok {
		return model.Requester{}, common.NewAppError(http.StatusUnauthorized, "Unauthorized", "Invalid user role in token", nil)
	}
	return model.Requester{UserID: userID, Role: model.Role(role)}, nil
}
