package utils

import "github.com/google/uuid"

// GenerateID returns a new record identifier.
func GenerateID() string {
	return uuid.NewString()
}
