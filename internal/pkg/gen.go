package pkg

import "github.com/google/uuid"

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// IsSessionID - reports whether id looks like an ID made by GenerateNewSessionID.
func IsSessionID(id string) bool {
	return uuid.Validate(id) == nil
}
