package model

import "github.com/golang-jwt/jwt/v5"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AppClaims are issued by the external auth service and verified here.
type AppClaims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Requester identifies the caller of a service operation.
type Requester struct {
	UserID int64
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
