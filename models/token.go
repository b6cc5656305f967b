package models

import "github.com/golang-jwt/jwt/v5"

// Token is a bearer token issued or accepted by the reference server.
type Token struct {
	Token        *jwt.Token
	SignedString string
	// Subject identifies the operator or device the token was issued for.
	Subject string
}
