package auth

// JWTValidator defines the interface for bearer token validation
type JWTValidator interface {
	// ValidateToken validates a token and returns its claims if valid
	ValidateToken(tokenString string) (*CustomClaims, error)
}
