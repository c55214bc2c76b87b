package ports

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer issues and validates access tokens carrying the user's email.
type TokenIssuer interface {
	IssueAccessToken(email string, role string, expiresInSeconds int64) (string, error)
	ValidateAccessToken(tokenString string) (email string, role string, err error)
}
