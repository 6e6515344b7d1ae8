package types

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims for the tenant API
type Claims struct {
	UserID    uint `json:"user_id"`
	CompanyID uint `json:"company_id"`
	jwt.RegisteredClaims
}
