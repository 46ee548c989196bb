package domain

import "github.com/google/uuid"

// sessionIDPrefix namespaces ledger IDs in exports shared with other tools.
const sessionIDPrefix = "pomodoro-"

// generateID creates a new unique session identifier.
func generateID() string {
	return sessionIDPrefix + uuid.New().String()
}
