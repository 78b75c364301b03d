package postgres

// PostgreSQL error codes
const (
	// UniqueViolationCode is returned on unique constraint violations
	UniqueViolationCode = "23505"
)
